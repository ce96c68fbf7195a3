package driven

import (
	"context"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
)

// TokenStore persists at most one encrypted token per identity. Only the
// encrypted secret and expiry survive a round trip; the network fields on
// model.Token are transient. Save/Load for one identity are linearizable
// (single writer, last write wins); different identities never interfere.
type TokenStore interface {
	// Load returns the stored token for the identity, or the empty record
	// when none exists. A missing token is not an error.
	Load(ctx context.Context, identityRef string) (model.Token, error)

	// Save overwrites the identity's stored token. No history is kept.
	Save(ctx context.Context, identityRef string, token model.Token) error
}
