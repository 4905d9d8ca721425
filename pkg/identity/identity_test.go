package identity

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"agentmesh/go-sdk/pkg/did"
)

func TestGenerateProducesResolvableDID(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	pub, err := did.PublicKey(kp.DID)
	if err != nil {
		t.Fatalf("did does not resolve: %v", err)
	}
	if !bytes.Equal(pub, kp.PublicKey) {
		t.Fatal("did resolves to a different public key")
	}
}

func TestFromMnemonicDeterministic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	if err != nil {
		t.Fatalf("mnemonic generation failed: %v", err)
	}
	if got := len(strings.Fields(mnemonic)); got != 24 {
		t.Fatalf("expected 24 words, got %d", got)
	}
	k1, err := FromMnemonic(mnemonic)
	if err != nil {
		t.Fatalf("derive 1 failed: %v", err)
	}
	k2, err := FromMnemonic("  " + mnemonic + "\n")
	if err != nil {
		t.Fatalf("derive 2 failed: %v", err)
	}
	if k1.DID != k2.DID {
		t.Fatal("same mnemonic should derive the same identity")
	}
	if !bytes.Equal(k1.PrivateKey, k2.PrivateKey) {
		t.Fatal("same mnemonic should derive the same private key")
	}
}

func TestFromMnemonicRejectsInvalid(t *testing.T) {
	for _, m := range []string{"", "not a phrase", "abandon abandon abandon"} {
		if _, err := FromMnemonic(m); !errors.Is(err, ErrInvalidMnemonic) {
			t.Fatalf("expected ErrInvalidMnemonic for %q, got %v", m, err)
		}
	}
}

func TestFromSeedRejectsWrongLength(t *testing.T) {
	if _, err := FromSeed(make([]byte, 16)); !errors.Is(err, ErrInvalidSeed) {
		t.Fatalf("expected ErrInvalidSeed, got %v", err)
	}
}
