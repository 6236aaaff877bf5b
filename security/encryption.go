package security

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

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrCiphertextTooShort is returned when a sealed value is shorter than the nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Encryptor seals values with AES-256-GCM. The sealed format is [nonce][ciphertext].
type Encryptor struct {
	aead    cipher.AEAD
	enabled bool
}

// NewEncryptor creates a new encryptor.
// If key is nil or empty, encryption is disabled and Seal/Open pass data through.
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) == 0 {
		return &Encryptor{enabled: false}, nil
	}

	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be exactly %d bytes for AES-256, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Encryptor{
		aead:    aead,
		enabled: true,
	}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (e *Encryptor) Seal(plaintext []byte) ([]byte, error) {
	if !e.enabled {
		return append([]byte(nil), plaintext...), nil
	}

	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a value produced by Seal.
func (e *Encryptor) Open(sealed []byte) ([]byte, error) {
	if !e.enabled {
		return append([]byte(nil), sealed...), nil
	}

	nonceSize := e.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

// IsEnabled returns true if encryption is enabled
func (e *Encryptor) IsEnabled() bool {
	return e.enabled
}

// DeriveKey derives a 32-byte key from secret with HKDF-SHA256.
// info separates keys derived from the same secret for different purposes.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret must not be empty")
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// GenerateKey generates a new 32-byte encryption key for AES-256
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// KeyFromBase64 decodes a base64-encoded encryption key
func KeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}
