// Package secrets encrypts OAuth tokens before they reach a store.
package secrets

import (
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

// MinSecretLen is the shortest passphrase DeriveKey accepts.
const MinSecretLen = 32

const keyInfo = "slackdone token encryption v1"

//nolint:gochecknoglobals // sentinel error
var ErrInvalidKey = errors.New("secrets: invalid encryption key")

//nolint:gochecknoglobals // sentinel error
var ErrCiphertext = errors.New("secrets: malformed ciphertext")

// DeriveKey stretches a configured passphrase into a 32-byte AES key with
// HKDF-SHA256.
func DeriveKey(secret string) ([]byte, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("secrets.DeriveKey: %w: need at least %d bytes", ErrInvalidKey, MinSecretLen)
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("secrets.DeriveKey: %w", err)
	}
	return key, nil
}

// Vault encrypts/decrypts tokens using AES-256-GCM.
type Vault struct {
	aead cipher.AEAD
}

// NewVault creates a Vault with the given 32-byte encryption key.
func NewVault(key []byte) (*Vault, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secrets.NewVault: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets.NewVault: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// NewVaultFromSecret derives the key from a passphrase and creates a Vault.
func NewVaultFromSecret(secret string) (*Vault, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	return NewVault(key)
}

// Encrypt seals plaintext bound to scope (the owning workspace id), so a
// ciphertext copied to another row fails to open. The output format is
// base64(nonce || ciphertext). An empty plaintext stays empty.
func (v *Vault) Encrypt(plaintext, scope string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets.Encrypt: generate nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), []byte(scope))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt with the same scope.
func (v *Vault) Decrypt(ciphertext, scope string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("secrets.Decrypt: %w: %w", ErrCiphertext, err)
	}

	nonceSize := v.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("secrets.Decrypt: %w: too short", ErrCiphertext)
	}

	plaintext, err := v.aead.Open(nil, data[:nonceSize], data[nonceSize:], []byte(scope))
	if err != nil {
		return "", fmt.Errorf("secrets.Decrypt: %w: %w", ErrCiphertext, err)
	}

	return string(plaintext), nil
}
