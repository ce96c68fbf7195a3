// Package crypto implements the TokenCipher port with AES-256-GCM keyed by
// named encryption profiles.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// TokenProfile is the profile name under which provider access tokens are
// sealed.
const TokenProfile = "yammer_token"

// Compile-time interface satisfaction check.
var _ driven.TokenCipher = (*Cipher)(nil)

// Cipher seals token secrets with AES-256-GCM. The key is resolved from the
// keyring once at construction; a missing or malformed profile fails there,
// never later.
type Cipher struct {
	profile string
	aead    cipher.AEAD
}

// NewCipher resolves the named profile from the keyring and prepares the
// AEAD. The key must be 32 bytes.
func NewCipher(profile string, keyring map[string][]byte) (*Cipher, error) {
	key, ok := keyring[profile]
	if !ok {
		return nil, fmt.Errorf("encryption profile %q not configured", profile)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption profile %q: key must be 32 bytes, got %d", profile, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("encryption profile %q: %w", profile, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("encryption profile %q: %w", profile, err)
	}

	return &Cipher{profile: profile, aead: aead}, nil
}

// Encrypt seals the plaintext and returns base64(nonce || ciphertext || tag).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("profile %q: rand nonce: %w", c.profile, err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Malformed or foreign input
// returns an error wrapping driven.ErrCiphertext so callers can tell it
// apart from an absent credential.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: profile %q: base64: %v", driven.ErrCiphertext, c.profile, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: profile %q: value too short", driven.ErrCiphertext, c.profile)
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: profile %q: %v", driven.ErrCiphertext, c.profile, err)
	}

	return string(plaintext), nil
}
