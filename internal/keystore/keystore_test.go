package keystore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	mnemonic := []byte("abandon ability able about above absent absorb abstract")
	data, err := Seal("correct horse", mnemonic)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	got, err := Open("correct horse", data)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !bytes.Equal(got, mnemonic) {
		t.Fatal("round trip mismatch")
	}
}

func TestOpenRejectsWrongPassphrase(t *testing.T) {
	data, err := Seal("right", []byte("secret words"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := Open("wrong", data); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestOpenRejectsForeignData(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("not a keystore"),
		[]byte("MESHKEY1\nnot-json"),
	}
	for _, data := range cases {
		if _, err := Open("pw", data); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %q, got %v", data, err)
		}
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	data, err := Seal("pw", []byte("secret words"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	data[len(data)-2] ^= 0x01
	if _, err := Open("pw", data); err == nil {
		t.Fatal("tampered blob should not open")
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.key")
	if err := Write(path, "pw", []byte("secret words")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := Read(path, "pw")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != "secret words" {
		t.Fatalf("unexpected contents %q", got)
	}
}
