package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// VendorKeyPrefix is the prefix every Anthropic API key carries.
	VendorKeyPrefix = "sk-ant-"

	vendorKeyMinLength = 20
	vendorKeyMaxLength = 256

	pbkdf2Iterations = 100_000
	aesKeyLength     = 32
)

// apiKeySalt is the application-wide PBKDF2 salt. Changing it makes every
// stored vendor key unreadable.
var apiKeySalt = []byte("cardchat.vendor-key.v1")

var (
	ErrInvalidVendorKey  = errors.New("api key must start with sk-ant- and contain no whitespace")
	ErrInvalidCiphertext = errors.New("invalid encrypted api key")
	ErrEmptySecret       = errors.New("encryption secret is empty")
)

// APIKeyCipher encrypts vendor keys at rest with AES-256-GCM under a key
// derived from the server secret.
type APIKeyCipher struct {
	aead cipher.AEAD
}

// NewAPIKeyCipher derives the AES key from secret with PBKDF2-HMAC-SHA256.
func NewAPIKeyCipher(secret string) (*APIKeyCipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := pbkdf2.Key([]byte(secret), apiKeySalt, pbkdf2Iterations, aesKeyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating aes cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}

	return &APIKeyCipher{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (c *APIKeyCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *APIKeyCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}

// ValidVendorKey reports whether key looks like an Anthropic API key.
func ValidVendorKey(key string) bool {
	if !strings.HasPrefix(key, VendorKeyPrefix) {
		return false
	}
	if len(key) < vendorKeyMinLength || len(key) > vendorKeyMaxLength {
		return false
	}
	return !strings.ContainsFunc(key, unicode.IsSpace)
}

// MaskVendorKey keeps the prefix and the last four characters.
func MaskVendorKey(key string) string {
	if len(key) <= len(VendorKeyPrefix)+4 {
		return VendorKeyPrefix + "..."
	}
	return VendorKeyPrefix + "..." + key[len(key)-4:]
}
