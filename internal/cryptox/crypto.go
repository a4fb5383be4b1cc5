// Package cryptox seals backup snapshots with a passphrase.
//
// A sealed blob is self-describing: magic, argon2id salt, AES-GCM nonce and
// ciphertext. The key is derived from the passphrase and the per-blob salt,
// so the same passphrase never reuses a key.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32
)

var magic = []byte("UCSEAL1\x00")

var (
	ErrNotSealed     = errors.New("data is not a sealed blob")
	ErrDecryptFailed = errors.New("wrong passphrase or corrupted data")
)

// DeriveKey stretches passphrase into an AES-256 key with argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// IsSealed reports whether data starts with the sealed-blob header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Seal encrypts plaintext under passphrase.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := DeriveKey(passphrase, salt)
	defer Wipe(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(magic)+saltSize+len(nonce)+len(plaintext)+aesgcm.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	// The header is authenticated as additional data.
	return aesgcm.Seal(out, nonce, plaintext, out[:len(magic)+saltSize]), nil
}

// Open reverses Seal.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if !IsSealed(sealed) || len(sealed) < len(magic)+saltSize {
		return nil, ErrNotSealed
	}
	salt := sealed[len(magic) : len(magic)+saltSize]

	key := DeriveKey(passphrase, salt)
	defer Wipe(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	rest := sealed[len(magic)+saltSize:]
	if len(rest) < aesgcm.NonceSize() {
		return nil, ErrNotSealed
	}
	nonce, ciphertext := rest[:aesgcm.NonceSize()], rest[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, sealed[:len(magic)+saltSize])
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return aesgcm, nil
}

// Wipe overwrites b with zeros. A nil slice is ignored.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
