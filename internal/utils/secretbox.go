package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sb1:"

// SecretBox seals short secrets (OAuth client secrets) for storage at rest
type SecretBox struct {
	key [32]byte
}

// NewSecretBox derives a sealing key from the configured encryption key
func NewSecretBox(encryptionKey string) (*SecretBox, error) {
	b := &SecretBox{}
	r := hkdf.New(sha256.New, []byte(encryptionKey), nil, []byte("jobdesk/xero-client-secret"))
	if _, err := io.ReadFull(r, b.key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}
	return b, nil
}

// Seal encrypts plaintext into a printable string
func (b *SecretBox) Seal(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix
// are returned unchanged so rows written before sealing stay readable.
func (b *SecretBox) Open(value string) (string, error) {
	if len(value) < len(sealedPrefix) || value[:len(sealedPrefix)] != sealedPrefix {
		return value, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(value[len(sealedPrefix):])
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}
	if len(raw) < 24 {
		return "", errors.New("sealed value too short")
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &b.key)
	if !ok {
		return "", errors.New("failed to open sealed value")
	}

	return string(plain), nil
}
