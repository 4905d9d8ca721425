// Package keystore persists an agent's recovery phrase encrypted at
// rest: argon2id stretches the passphrase, XChaCha20-Poly1305 seals the
// phrase. The core protocol never touches disk; this is the tooling
// side that keeps key material between runs.
package keystore

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	fileVersion = 1
	filePrefix  = "MESHKEY1\n"
	saltSize    = 16

	kdfTime     = 2
	kdfMemoryKB = 64 * 1024
	kdfThreads  = 4
)

var (
	ErrAuthFailed = errors.New("keystore: wrong passphrase or corrupted file")
	ErrInvalid    = errors.New("keystore: file is not a valid keystore")
)

type sealedKey struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Seal encrypts the mnemonic under the passphrase.
func Seal(passphrase string, mnemonic []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := deriveKey(passphrase, salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	sealed := sealedKey{
		Version:     fileVersion,
		KDF:         "argon2id",
		KDFTime:     kdfTime,
		KDFMemoryKB: kdfMemoryKB,
		KDFThreads:  kdfThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, mnemonic, nil),
	}
	raw, err := json.Marshal(sealed)
	if err != nil {
		return nil, err
	}
	return append([]byte(filePrefix), raw...), nil
}

// Open decrypts a sealed keystore blob.
func Open(passphrase string, data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte(filePrefix)) {
		return nil, ErrInvalid
	}
	var sealed sealedKey
	if err := json.Unmarshal(data[len(filePrefix):], &sealed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if sealed.Version != fileVersion || sealed.KDF != "argon2id" {
		return nil, ErrInvalid
	}
	if len(sealed.Salt) != saltSize || len(sealed.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrInvalid
	}

	key := argon2.IDKey([]byte(passphrase), sealed.Salt,
		sealed.KDFTime, sealed.KDFMemoryKB, sealed.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, sealed.Nonce, sealed.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// Write seals the mnemonic and writes it to path with owner-only
// permissions.
func Write(path, passphrase string, mnemonic []byte) error {
	data, err := Seal(passphrase, mnemonic)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Read loads and opens a keystore file.
func Read(path, passphrase string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Open(passphrase, data)
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemoryKB, kdfThreads, chacha20poly1305.KeySize)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
