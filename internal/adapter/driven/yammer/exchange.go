package yammer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/araddon/dateparse"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenExchanger = (*Exchanger)(nil)

// Exchanger swaps an authorization code for a sealed token record via the
// provider's token endpoint. It does not retry and it does not persist;
// binding the record to a principal is the caller's job.
type Exchanger struct {
	http         *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	cipher       driven.TokenCipher
}

// NewExchanger creates an Exchanger against the given provider host; an
// empty baseURL selects the production host.
func NewExchanger(clientID, clientSecret string, cipher driven.TokenCipher, baseURL string, timeout time.Duration) *Exchanger {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Exchanger{
		http:         &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		cipher:       cipher,
	}
}

// NewExchangerWithHTTPClient creates an Exchanger with a custom http.Client
// and base URL. Intended for tests injecting an httptest server.
func NewExchangerWithHTTPClient(clientID, clientSecret string, cipher driven.TokenCipher, httpClient *http.Client, baseURL string) *Exchanger {
	return &Exchanger{
		http:         httpClient,
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		cipher:       cipher,
	}
}

// accessTokenResponse is the provider's token-exchange body. expires_at is a
// provider timestamp string and may be absent for non-expiring tokens.
type accessTokenResponse struct {
	AccessToken struct {
		Token       string `json:"token"`
		ExpiresAt   string `json:"expires_at"`
		NetworkID   int64  `json:"network_id"`
		NetworkName string `json:"network_name"`
		UserID      int64  `json:"user_id"`
	} `json:"access_token"`
}

// Exchange performs the code-for-token exchange. The raw token is sealed
// before the record leaves this method; a record with a plaintext secret is
// never returned.
func (e *Exchanger) Exchange(ctx context.Context, code string) (model.Token, error) {
	query := url.Values{}
	query.Set("client_id", e.clientID)
	query.Set("client_secret", e.clientSecret)
	query.Set("code", code)

	endpoint := e.baseURL + accessTokenPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Token{}, fmt.Errorf("%w: token exchange: %v", driven.ErrUpstream, err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return model.Token{}, fmt.Errorf("%w: token exchange: %v", driven.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Token{}, fmt.Errorf("%w: token exchange: status %d", driven.ErrUpstream, resp.StatusCode)
	}

	var parsed accessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.Token{}, fmt.Errorf("%w: token exchange: decode: %v", driven.ErrUpstream, err)
	}

	sealed, err := e.cipher.Encrypt(parsed.AccessToken.Token)
	if err != nil {
		return model.Token{}, fmt.Errorf("%w: %v", driven.ErrCredentialSeal, err)
	}

	return model.Token{
		EncryptedSecret: sealed,
		ExpiresAt:       parseExpiry(parsed.AccessToken.ExpiresAt),
		NetworkID:       parsed.AccessToken.NetworkID,
		NetworkName:     parsed.AccessToken.NetworkName,
		RemoteUserID:    parsed.AccessToken.UserID,
	}, nil
}

// parseExpiry turns the provider's expiry string into a timestamp. Absent or
// unparsable values mean "non-expiring or unknown" and map to nil.
func parseExpiry(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
