package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// ErrMissingCode is returned when the callback arrives without an
// authorization code.
var ErrMissingCode = errors.New("missing authorization code")

// ErrNoBindTarget is returned when neither an explicit identity nor the
// service identity is available to own the exchanged token.
var ErrNoBindTarget = errors.New("no identity to bind the token to")

// AuthService handles the OAuth callback leg: exchanging the code, binding
// the sealed token to a principal, and computing the post-login redirect.
// Unlike feed retrieval, failures here surface to the caller: a login the
// user initiated must visibly fail.
type AuthService struct {
	exchanger driven.TokenExchanger
	tokens    *TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(exchanger driven.TokenExchanger, tokens *TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		exchanger: exchanger,
		tokens:    tokens,
		logger:    logger,
	}
}

// Callback exchanges the authorization code, stores the resulting token for
// identityRef (or the service identity when identityRef is empty), and
// returns the path the browser should be sent back to.
func (s *AuthService) Callback(ctx context.Context, identityRef, code, returnPath string) (string, error) {
	if code == "" {
		return "", ErrMissingCode
	}

	if identityRef == "" {
		ref, err := s.tokens.ServiceIdentity(ctx)
		if err != nil {
			return "", err
		}
		if ref == "" {
			return "", ErrNoBindTarget
		}
		identityRef = ref
	}

	token, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("auth callback: %w", err)
	}

	if err := s.tokens.SaveToken(ctx, identityRef, token); err != nil {
		return "", fmt.Errorf("auth callback: %w", err)
	}

	s.logger.Info("authorization completed",
		"identity_ref", identityRef,
		"network", token.NetworkName,
	)

	return sanitizeReturnPath(returnPath), nil
}

// sanitizeReturnPath constrains the post-login redirect to a local path.
// The return path arrives on the callback query string, so an absolute URL
// or a scheme-relative "//host" value would let the provider redirect land
// on an attacker-chosen site.
func sanitizeReturnPath(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") {
		return "/"
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}
