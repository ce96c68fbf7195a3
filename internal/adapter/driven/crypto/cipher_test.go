package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

func testKeyring() map[string][]byte {
	return map[string][]byte{
		TokenProfile: []byte("0123456789abcdef0123456789abcdef"),
	}
}

func TestNewCipher_MissingProfile(t *testing.T) {
	_, err := NewCipher("nonexistent", testKeyring())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestNewCipher_WrongKeyLength(t *testing.T) {
	_, err := NewCipher(TokenProfile, map[string][]byte{TokenProfile: []byte("short")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(TokenProfile, testKeyring())
	require.NoError(t, err)

	cases := []struct {
		name      string
		plaintext string
	}{
		{"typical token", "AbCdEf123456-FAKE-token"},
		{"empty string", ""},
		{"binary-ish", "\x00\x01\xff\xfe high entropy \x7f"},
		{"long", strings.Repeat("x", 4096)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := c.Encrypt(tc.plaintext)
			require.NoError(t, err)

			opened, err := c.Decrypt(sealed)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, opened)
		})
	}
}

func TestCipher_EncryptIsNonDeterministic(t *testing.T) {
	c, err := NewCipher(TokenProfile, testKeyring())
	require.NoError(t, err)

	a, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := c.Encrypt("same plaintext")
	require.NoError(t, err)

	// Fresh nonce per call.
	assert.NotEqual(t, a, b)
}

func TestCipher_DecryptMalformed(t *testing.T) {
	c, err := NewCipher(TokenProfile, testKeyring())
	require.NoError(t, err)

	cases := []struct {
		name  string
		input string
	}{
		{"not base64", "%%% not base64 %%%"},
		{"too short", "AAAA"},
		{"garbage ciphertext", "aGVsbG8gd29ybGQgdGhpcyBpcyBub3QgYSBjaXBoZXJ0ZXh0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Decrypt(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, driven.ErrCiphertext)
		})
	}
}

func TestCipher_DecryptForeignKey(t *testing.T) {
	c1, err := NewCipher(TokenProfile, testKeyring())
	require.NoError(t, err)
	c2, err := NewCipher(TokenProfile, map[string][]byte{
		TokenProfile: []byte("fedcba9876543210fedcba9876543210"),
	})
	require.NoError(t, err)

	sealed, err := c1.Encrypt("secret")
	require.NoError(t, err)

	_, err = c2.Decrypt(sealed)
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrCiphertext)
}
