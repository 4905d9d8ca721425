package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrIncompleteEnvelope = errors.New("envelope: missing required field")
	ErrBuilderReused      = errors.New("envelope: builder already produced an envelope")
)

// Builder accumulates envelope fields. id, type and sender are the
// minimum viable message and must be set before Build; version and ts
// get defaults. Each builder produces exactly one envelope.
type Builder struct {
	env   Envelope
	err   error
	built bool
	now   func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

func (b *Builder) ID(id string) *Builder {
	b.env.ID = id
	return b
}

func (b *Builder) Type(t MessageType) *Builder {
	b.env.Type = t
	return b
}

func (b *Builder) Sender(p Party) *Builder {
	b.env.Sender = p
	return b
}

func (b *Builder) Recipient(p Party) *Builder {
	b.env.Recipient = &p
	return b
}

func (b *Builder) Version(v string) *Builder {
	b.env.Version = v
	return b
}

func (b *Builder) Timestamp(ts time.Time) *Builder {
	b.env.TS = ts.UTC().Format(TimeLayout)
	return b
}

func (b *Builder) Thread(thread string) *Builder {
	b.env.Thread = thread
	return b
}

// Payload sets the envelope payload from any JSON-compatible value.
// A non-serializable value surfaces as an error from Build.
func (b *Builder) Payload(v any) *Builder {
	raw, err := json.Marshal(v)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("envelope: payload is not JSON-serializable: %w", err)
		return b
	}
	b.env.Payload = raw
	return b
}

// RawPayload sets an already-encoded payload.
func (b *Builder) RawPayload(raw json.RawMessage) *Builder {
	b.env.Payload = raw
	return b
}

// EncryptedPayload sets the ciphertext wrapper as payload and flags the
// envelope as encrypted. The eventual signature binds the ciphertext.
func (b *Builder) EncryptedPayload(ciphertext string) *Builder {
	raw, _ := json.Marshal(EncryptedPayload{Encrypted: ciphertext})
	b.env.Payload = raw
	b.env.Encrypted = true
	return b
}

func (b *Builder) Meta(v any) *Builder {
	raw, err := json.Marshal(v)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("envelope: meta is not JSON-serializable: %w", err)
		return b
	}
	b.env.Meta = raw
	return b
}

// Build validates the accumulated fields and returns the envelope.
func (b *Builder) Build() (Envelope, error) {
	if b.built {
		return Envelope{}, ErrBuilderReused
	}
	if b.err != nil {
		return Envelope{}, b.err
	}
	switch {
	case b.env.ID == "":
		return Envelope{}, fmt.Errorf("%w: id", ErrIncompleteEnvelope)
	case b.env.Type == "":
		return Envelope{}, fmt.Errorf("%w: type", ErrIncompleteEnvelope)
	case b.env.Sender.ID == "":
		return Envelope{}, fmt.Errorf("%w: sender", ErrIncompleteEnvelope)
	}
	if b.env.Version == "" {
		b.env.Version = ProtocolVersion
	}
	if b.env.TS == "" {
		b.env.TS = b.now().UTC().Format(TimeLayout)
	}
	if b.env.Payload == nil {
		b.env.Payload = json.RawMessage("null")
	}
	b.built = true
	return b.env, nil
}
