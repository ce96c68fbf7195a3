package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// TokenService owns the credential lifecycle: binding exchanged tokens to
// identities, loading them back, and resolving the configured service
// identity used when no caller-specific credential applies.
type TokenService struct {
	identities driven.IdentityStore
	tokens     driven.TokenStore
	cipher     driven.TokenCipher
	criteria   map[string]string
	logger     *slog.Logger
}

// NewTokenService creates a TokenService. criteria holds the
// service-account lookup attributes from configuration; empty values are
// ignored at resolution time.
func NewTokenService(
	identities driven.IdentityStore,
	tokens driven.TokenStore,
	cipher driven.TokenCipher,
	criteria map[string]string,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		identities: identities,
		tokens:     tokens,
		cipher:     cipher,
		criteria:   criteria,
		logger:     logger,
	}
}

// SaveToken binds the token to the identity and persists it, replacing any
// previous grant. The identity must exist.
func (s *TokenService) SaveToken(ctx context.Context, identityRef string, token model.Token) error {
	if _, err := s.identities.LoadByRef(ctx, identityRef); err != nil {
		return fmt.Errorf("bind token: %w", err)
	}

	token.IdentityRef = identityRef
	if err := s.tokens.Save(ctx, identityRef, token); err != nil {
		return fmt.Errorf("bind token: %w", err)
	}

	s.logger.Info("token saved", "identity_ref", identityRef, "expires_at", token.ExpiresAt)
	return nil
}

// Token returns the identity's stored token, the empty record when none
// exists.
func (s *TokenService) Token(ctx context.Context, identityRef string) (model.Token, error) {
	return s.tokens.Load(ctx, identityRef)
}

// ServiceIdentity resolves the configured fallback principal. It returns
// ("", nil) when no criteria are configured or nothing matches. When
// several identities satisfy the criteria the first in the store's
// enumeration order wins; that order is implementation-defined.
func (s *TokenService) ServiceIdentity(ctx context.Context) (string, error) {
	criteria := make(map[string]string, len(s.criteria))
	for name, value := range s.criteria {
		if value != "" {
			criteria[name] = value
		}
	}
	if len(criteria) == 0 {
		return "", nil
	}

	matches, err := s.identities.FindByAttributes(ctx, criteria)
	if err != nil {
		return "", fmt.Errorf("resolve service identity: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}

	return matches[0].Ref, nil
}

// ServiceToken returns the service identity's stored token, the empty
// record when there is no service identity or no grant.
func (s *TokenService) ServiceToken(ctx context.Context) (model.Token, error) {
	ref, err := s.ServiceIdentity(ctx)
	if err != nil {
		return model.Token{}, err
	}
	if ref == "" {
		return model.Token{}, nil
	}

	return s.tokens.Load(ctx, ref)
}

// BearerToken implements the feed client's bearer source with the service
// identity's credential. An absent credential yields ("", nil); an
// unreadable one surfaces the decrypt error so the caller can log the
// difference before degrading.
func (s *TokenService) BearerToken(ctx context.Context) (string, error) {
	token, err := s.ServiceToken(ctx)
	if err != nil {
		return "", err
	}
	if token.IsEmpty() {
		return "", nil
	}

	plaintext, err := s.cipher.Decrypt(token.EncryptedSecret)
	if err != nil {
		return "", fmt.Errorf("open service token: %w", err)
	}

	return plaintext, nil
}
