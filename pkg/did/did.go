// Package did implements the did:key identity scheme for Ed25519 keys:
// did:key:z + base58btc(0xed 0x01 || 32-byte public key). A did:key is
// self-certifying — the identifier is the key, no registry involved.
package did

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "did:key:z"

// Multicodec prefix identifying an Ed25519 public key.
const (
	multicodecEd25519Hi = 0xed
	multicodecEd25519Lo = 0x01
)

var (
	ErrInvalidDIDKey = errors.New("did: invalid did:key identifier")
	ErrInvalidKey    = errors.New("did: invalid public key")
)

// FromPublicKey encodes a 32-byte Ed25519 public key as a did:key string.
func FromPublicKey(pub ed25519.PublicKey) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: length %d, want %d", ErrInvalidKey, len(pub), ed25519.PublicKeySize)
	}
	buf := make([]byte, 0, 2+ed25519.PublicKeySize)
	buf = append(buf, multicodecEd25519Hi, multicodecEd25519Lo)
	buf = append(buf, pub...)
	return keyPrefix + base58.Encode(buf), nil
}

// PublicKey decodes a did:key string back to the raw Ed25519 public key.
// It fails on a missing did:key:z prefix, a base58 decode error, a
// payload that is not multicodec prefix + 32 key bytes, or a multicodec
// prefix that does not identify Ed25519.
func PublicKey(id string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(id, keyPrefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDIDKey, keyPrefix)
	}
	decoded, err := base58.Decode(id[len(keyPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDIDKey, err)
	}
	if len(decoded) != 2+ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: decoded length %d, want %d", ErrInvalidDIDKey, len(decoded), 2+ed25519.PublicKeySize)
	}
	if decoded[0] != multicodecEd25519Hi || decoded[1] != multicodecEd25519Lo {
		return nil, fmt.Errorf("%w: multicodec prefix [%x %x] is not ed25519", ErrInvalidDIDKey, decoded[0], decoded[1])
	}
	return ed25519.PublicKey(decoded[2:]), nil
}

// Fingerprint returns a short, non-reversible digest of an identifier
// for use in logs and diagnostics. Full DIDs are routable addresses and
// stay out of log output.
func Fingerprint(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return base58.Encode(sum[:8])
}
