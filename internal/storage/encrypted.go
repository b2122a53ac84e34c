// internal/storage/encrypted.go
package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// EncryptedStore wraps another Store and encrypts values at rest with
// AES-256-GCM. The data key is derived from a master secret via HKDF-SHA256,
// so rotating the secret invalidates all stored days at once.
type EncryptedStore struct {
	inner Store
	aead  cipher.AEAD
}

var _ Store = (*EncryptedStore)(nil)

var errCiphertextTooShort = errors.New("ciphertext shorter than nonce")

func NewEncryptedStore(inner Store, masterSecret string) (*EncryptedStore, error) {
	key, err := deriveDataKey([]byte(masterSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to derive data key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}

	return &EncryptedStore{inner: inner, aead: aead}, nil
}

// deriveDataKey derives a 32-byte AES key from the master secret using
// HKDF-SHA256 with a fixed info label.
func deriveDataKey(secret []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, secret, nil, []byte("day-log-store-key"))
	out := make([]byte, 32)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode stored value for %q: %w", key, err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", errCiphertextTooShort
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt value for %q: %w", key, err)
	}
	return string(plain), nil
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// The key is bound as additional data so a value cannot be replayed
	// under a different day's key.
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) (bool, error) {
	return s.inner.Delete(ctx, key)
}
