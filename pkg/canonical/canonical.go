// Package canonical produces deterministic JSON per RFC 8785 (JCS).
// Signing and verification both run through this package; two logically
// equal values must yield byte-identical output regardless of key
// insertion order or wire formatting.
package canonical

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gowebpki/jcs"
)

var ErrNotSerializable = errors.New("canonical: value is not JSON-serializable")

// Marshal encodes v as canonical JSON: object keys sorted by UTF-16
// code units, ES6 number formatting, minimal string escaping, no
// whitespace.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSerializable, err)
	}
	return Transform(raw)
}

// Transform canonicalizes already-encoded JSON bytes. Number and string
// canonicalization happens from the literal tokens, so callers that
// hold json.RawMessage trees never go through a lossy float round trip.
func Transform(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSerializable, err)
	}
	return out, nil
}
