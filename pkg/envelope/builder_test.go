package envelope

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestBuildDefaults(t *testing.T) {
	env, err := NewBuilder().
		ID(NewID()).
		Type(TypeRequest).
		Sender(Party{ID: "did:key:zSender"}).
		Payload(map[string]any{"intent": "demo.echo"}).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if env.Version != ProtocolVersion {
		t.Fatalf("version default missing, got %q", env.Version)
	}
	if env.TS == "" {
		t.Fatal("ts should default to build time")
	}
	if _, err := time.Parse(TimeLayout, env.TS); err != nil {
		t.Fatalf("ts is not in wire layout: %v", err)
	}
	if env.Recipient != nil || env.Thread != "" || env.Encrypted {
		t.Fatal("optional fields should stay unset")
	}
}

func TestBuildRequiresMandatoryFields(t *testing.T) {
	cases := []struct {
		name  string
		build func() (*Builder, string)
	}{
		{"missing id", func() (*Builder, string) {
			return NewBuilder().Type(TypeRequest).Sender(Party{ID: "did:key:zX"}), "id"
		}},
		{"missing type", func() (*Builder, string) {
			return NewBuilder().ID("m1").Sender(Party{ID: "did:key:zX"}), "type"
		}},
		{"missing sender", func() (*Builder, string) {
			return NewBuilder().ID("m1").Type(TypeRequest), "sender"
		}},
	}
	for _, tc := range cases {
		b, _ := tc.build()
		if _, err := b.Build(); !errors.Is(err, ErrIncompleteEnvelope) {
			t.Fatalf("%s: expected ErrIncompleteEnvelope, got %v", tc.name, err)
		}
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := NewBuilder().ID("m1").Type(TypeRequest).Sender(Party{ID: "did:key:zX"})
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderReused) {
		t.Fatalf("expected ErrBuilderReused, got %v", err)
	}
}

func TestBuilderRejectsNonSerializablePayload(t *testing.T) {
	_, err := NewBuilder().
		ID("m1").
		Type(TypeRequest).
		Sender(Party{ID: "did:key:zX"}).
		Payload(make(chan int)).
		Build()
	if err == nil {
		t.Fatal("expected error for non-serializable payload")
	}
}

func TestEncryptedPayloadWrapper(t *testing.T) {
	env, err := NewBuilder().
		ID("m1").
		Type(TypeResult).
		Sender(Party{ID: "did:key:zX"}).
		EncryptedPayload("abc123").
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !env.Encrypted {
		t.Fatal("encrypted flag should be set")
	}
	var wrapper EncryptedPayload
	if err := json.Unmarshal(env.Payload, &wrapper); err != nil {
		t.Fatalf("payload is not the ciphertext wrapper: %v", err)
	}
	if wrapper.Encrypted != "abc123" {
		t.Fatalf("unexpected ciphertext %q", wrapper.Encrypted)
	}
}
