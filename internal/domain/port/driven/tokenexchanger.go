package driven

import (
	"context"
	"errors"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
)

// ErrCredentialSeal is returned when a freshly obtained access token cannot
// be encrypted. The exchange aborts; a record never leaves the exchanger
// with a plaintext secret.
var ErrCredentialSeal = errors.New("access token could not be sealed")

// TokenExchanger swaps an authorization code for a sealed token record via
// the provider's token endpoint.
type TokenExchanger interface {
	// Exchange performs the code-for-token exchange. Transport and HTTP
	// failures wrap ErrUpstream; encryption failures wrap ErrCredentialSeal.
	// The returned record is not yet bound to an identity.
	Exchange(ctx context.Context, code string) (model.Token, error)
}
