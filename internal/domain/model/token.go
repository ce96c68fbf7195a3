package model

import "time"

// Token represents one identity's delegated access grant for the provider.
// The zero value is the canonical empty record meaning "no grant exists";
// IsEmpty distinguishes it from a real token. Treat instances as immutable
// values: a grant is replaced by saving a new record, never edited in place.
type Token struct {
	IdentityRef     string
	EncryptedSecret string
	ExpiresAt       *time.Time // nil when the token does not expire or the expiry is unknown.

	// Network fields are only present on records freshly produced by a code
	// exchange; they are not persisted and load back as zero values.
	NetworkID    int64
	NetworkName  string
	RemoteUserID int64
}

// IsEmpty reports whether the record is the empty sentinel. A token is never
// stored with a secret but without its remote user, so the secret alone is
// authoritative.
func (t Token) IsEmpty() bool {
	return t.EncryptedSecret == ""
}
