package envelope

import (
	"crypto/ed25519"
	"encoding/base64"

	"agentmesh/go-sdk/pkg/did"
)

// Resolver maps a sender identifier to its Ed25519 public key. A
// resolver that cannot handle the identifier reports ok == false; the
// verifier treats that as an authentication failure (fail closed).
type Resolver interface {
	Resolve(senderID string) (pub ed25519.PublicKey, ok bool)
}

// DIDKeyResolver resolves did:key identities by decoding the key that
// is embedded in the identifier itself. Any other scheme is unknown —
// a deliberate limitation, not a silent bug; plug in another Resolver
// to support registry-backed schemes.
type DIDKeyResolver struct{}

func (DIDKeyResolver) Resolve(senderID string) (ed25519.PublicKey, bool) {
	pub, err := did.PublicKey(senderID)
	if err != nil {
		return nil, false
	}
	return pub, true
}

// Verify checks env's signature against the key resolved from
// sender.id via the built-in did:key resolver.
func Verify(env Envelope) bool {
	return VerifyWith(env, DIDKeyResolver{})
}

// VerifyWith checks the Ed25519 signature over the canonical form of
// the envelope minus sig. It never returns an error: the verifier is a
// security boundary facing untrusted input, and every failure mode —
// missing sig, unresolvable sender, malformed base64, truncated bytes,
// wrong key — collapses to false so callers cannot distinguish them.
//
// Freshness and replay checks are protocol rules layered on top by the
// inbound acceptance layer; this function is pure and stateless.
func VerifyWith(env Envelope, resolver Resolver) bool {
	if env.Sig == "" || resolver == nil {
		return false
	}
	pub, ok := resolver.Resolve(env.Sender.ID)
	if !ok || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base64.RawURLEncoding.DecodeString(env.Sig)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	// An encrypted envelope is verified over the field set that was
	// signed — the ciphertext wrapper. Never decrypt before checking.
	msg, err := signingBytes(env)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
