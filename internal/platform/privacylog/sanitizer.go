// Package privacylog wraps an slog.Handler so protocol logs stay free
// of sensitive material: key material and payload bodies are redacted,
// DIDs are reduced to short stable fingerprints. Operators still get
// enough to correlate a sender across log lines without the logs
// becoming a routable address book.
package privacylog

import (
	"context"
	"log/slog"
	"strings"

	"agentmesh/go-sdk/pkg/did"
)

const redactedValue = "[REDACTED]"

// Keys whose values must never appear in logs at all.
var secretKeyParts = []string{
	"mnemonic", "seed", "private_key", "privatekey", "passphrase",
	"token", "secret", "password", "authorization",
}

// Keys carrying envelope content; logged presence-only.
var contentKeys = map[string]struct{}{
	"payload": {},
	"meta":    {},
}

// Keys carrying identities; logged as fingerprints.
var identityKeys = map[string]struct{}{
	"sender":    {},
	"recipient": {},
	"did":       {},
	"sender_id": {},
}

type Handler struct {
	next slog.Handler
}

func Wrap(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &Handler{next: next}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(Sanitize(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		sanitized = append(sanitized, Sanitize(attr))
	}
	return &Handler{next: h.next.WithAttrs(sanitized)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name)}
}

// Sanitize rewrites a single attribute according to the key policy.
// Identity fingerprints are stable across processes so a sender can be
// followed through a multi-node incident.
func Sanitize(attr slog.Attr) slog.Attr {
	key := strings.ToLower(strings.TrimSpace(attr.Key))

	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return slog.String(attr.Key, redactedValue)
		}
	}
	if _, ok := contentKeys[key]; ok {
		return slog.Int(attr.Key+"_bytes", len(attr.Value.String()))
	}
	if _, ok := identityKeys[key]; ok {
		v := attr.Value.String()
		if strings.HasPrefix(v, "did:") {
			return slog.String(attr.Key+"_fp", did.Fingerprint(v))
		}
		return attr
	}
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		sanitized := make([]any, 0, len(group))
		for _, a := range group {
			sanitized = append(sanitized, Sanitize(a))
		}
		return slog.Group(attr.Key, sanitized...)
	}
	return attr
}
