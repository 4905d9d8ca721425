// Package identity manages Ed25519 signing keypairs and their did:key
// identifiers. Keys are either generated from system randomness or
// derived deterministically from a BIP-39 mnemonic through HKDF, so an
// agent can be restored from its recovery phrase on another host.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"agentmesh/go-sdk/pkg/did"
)

const hkdfInfoSigning = "mesh/identity/signing/v1"

var (
	ErrInvalidMnemonic = errors.New("identity: invalid mnemonic")
	ErrInvalidSeed     = errors.New("identity: invalid seed")
)

// Keypair is a signing identity. PrivateKey is handed to envelope.Sign
// as a transient argument and must not leave the owning process.
type Keypair struct {
	DID        string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Generate creates a fresh keypair from crypto/rand.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: key generation failed: %w", err)
	}
	return fromKeys(pub, priv)
}

// FromSeed builds a keypair from a 32-byte Ed25519 seed.
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidSeed, len(seed), ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return fromKeys(priv.Public().(ed25519.PublicKey), priv)
}

// NewMnemonic generates a 24-word BIP-39 recovery phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// FromMnemonic derives the signing keypair from a recovery phrase.
// The BIP-39 seed is expanded through HKDF-SHA256 with a fixed info
// string, so the same phrase always yields the same identity.
func FromMnemonic(mnemonic string) (*Keypair, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" || !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := deriveSigningSeed(bip39.NewSeed(mnemonic, ""))
	if err != nil {
		return nil, err
	}
	return FromSeed(seed)
}

func deriveSigningSeed(seedBytes []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, seedBytes, nil, []byte(hkdfInfoSigning))
	out := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("identity: seed derivation failed: %w", err)
	}
	return out, nil
}

func fromKeys(pub ed25519.PublicKey, priv ed25519.PrivateKey) (*Keypair, error) {
	id, err := did.FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &Keypair{DID: id, PublicKey: pub, PrivateKey: priv}, nil
}
