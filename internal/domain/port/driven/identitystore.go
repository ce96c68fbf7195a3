package driven

import (
	"context"
	"errors"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
)

// ErrIdentityNotFound is returned by LoadByRef for an unknown reference.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityStore is the principal lookup the credential lifecycle binds to.
type IdentityStore interface {
	// Create registers an identity. A Ref is minted when the given one is
	// empty; the stored identity is returned.
	Create(ctx context.Context, identity model.Identity) (model.Identity, error)

	// LoadByRef returns the identity for the given reference, or an error
	// wrapping ErrIdentityNotFound.
	LoadByRef(ctx context.Context, ref string) (model.Identity, error)

	// FindByAttributes returns identities matching all given attribute
	// filters. The enumeration order of multiple matches is
	// implementation-defined; callers taking "the first" must not assume
	// more. At least one attribute is required.
	FindByAttributes(ctx context.Context, attrs map[string]string) ([]model.Identity, error)
}
