// Package envelope implements the signed unit of agent-to-agent
// communication: building, canonical signing, and fail-closed
// verification of protocol envelopes.
package envelope

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProtocolVersion is the version tag stamped on envelopes built without
// an explicit version.
const ProtocolVersion = "1.0"

// TimeLayout is the wire format of the ts field (ISO 8601, UTC).
const TimeLayout = "2006-01-02T15:04:05.000Z"

// MessageType enumerates the envelope kinds of the protocol. A causal
// chain usually runs REQUEST → OFFER → ACCEPT → RESULT, with ERROR
// terminating a failed exchange.
type MessageType string

const (
	TypeRequest MessageType = "REQUEST"
	TypeOffer   MessageType = "OFFER"
	TypeAccept  MessageType = "ACCEPT"
	TypeResult  MessageType = "RESULT"
	TypeError   MessageType = "ERROR"
)

// Party identifies a sender or recipient by its DID.
type Party struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Envelope is the signed message unit. Sig is the base64url (unpadded)
// Ed25519 signature over the canonical JSON of every other field.
// Wire JSON may arrive reordered or pretty-printed; receivers
// re-canonicalize before verifying and never trust wire byte order.
type Envelope struct {
	Version   string          `json:"version"`
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Sender    Party           `json:"sender"`
	Recipient *Party          `json:"recipient,omitempty"`
	TS        string          `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
	Thread    string          `json:"thread,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	Encrypted bool            `json:"encrypted,omitempty"`
	Sig       string          `json:"sig,omitempty"`
}

// EncryptedPayload is the payload wrapper carried when Encrypted is
// set. The signature covers this wrapper, never the plaintext, so
// verification does not require decryption.
type EncryptedPayload struct {
	Encrypted string `json:"encrypted"`
}

// NewID returns a fresh unique envelope id.
func NewID() string {
	return uuid.NewString()
}
