package envelope

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"agentmesh/go-sdk/pkg/canonical"
)

var ErrInvalidKey = errors.New("envelope: invalid signing key")

// Sign returns a copy of env with Sig set to the base64url-encoded
// Ed25519 signature over the canonical JSON of all other fields. It
// accepts either a 32-byte seed or a full 64-byte ed25519 private key.
// Version and ts are defaulted if the envelope skipped the builder.
func Sign(env Envelope, priv ed25519.PrivateKey) (Envelope, error) {
	switch len(priv) {
	case ed25519.PrivateKeySize:
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(priv)
	default:
		return Envelope{}, fmt.Errorf("%w: length %d, want %d or %d",
			ErrInvalidKey, len(priv), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
	if env.Version == "" {
		env.Version = ProtocolVersion
	}
	if env.TS == "" {
		env.TS = time.Now().UTC().Format(TimeLayout)
	}

	msg, err := signingBytes(env)
	if err != nil {
		return Envelope{}, err
	}
	env.Sig = base64.RawURLEncoding.EncodeToString(ed25519.Sign(priv, msg))
	return env, nil
}

// signingBytes is the exact byte string the signature covers: the
// canonical JSON of the envelope with sig absent. Signer and verifier
// must agree on these bytes or nothing interoperates.
func signingBytes(env Envelope) ([]byte, error) {
	env.Sig = ""
	raw, err := canonical.Marshal(env)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
