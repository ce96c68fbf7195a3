package driven

import "errors"

// ErrCiphertext is returned by TokenCipher.Decrypt when the stored value is
// malformed or was sealed under a different key. It is distinct from an
// absent credential: callers must not collapse the two.
var ErrCiphertext = errors.New("token ciphertext unreadable")

// TokenCipher seals and opens token secrets at rest. Implementations are
// keyed by a named encryption profile resolved once at construction.
type TokenCipher interface {
	// Encrypt seals a plaintext secret for storage.
	Encrypt(plaintext string) (string, error)

	// Decrypt opens a stored secret. Returns an error wrapping ErrCiphertext
	// when the input cannot be opened.
	Decrypt(ciphertext string) (string, error)
}
