package model

import "time"

// Identity is a principal on whose behalf a provider credential is held.
// Ref is an opaque stable reference minted at registration.
type Identity struct {
	Ref         string
	Username    string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}
