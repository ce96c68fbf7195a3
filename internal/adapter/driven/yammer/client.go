// Package yammer implements the provider-facing driven adapters: the
// authenticated feed client, the OAuth code exchange, and login URL
// construction.
package yammer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// DefaultBaseURL is the provider host.
const DefaultBaseURL = "https://www.yammer.com"

const (
	accessTokenPath   = "/oauth2/access_token.json"
	authorizePath     = "/oauth2/authorize"
	groupMessagesPath = "/api/v1/messages/in_group/%d.json"
)

// The group feed is fetched threaded with a fixed page size; the provider
// returns at most this many top-level threads per request.
const feedLimit = 5

// BearerSource yields the decrypted bearer token for outbound requests.
// An empty token with a nil error means "no credential, proceed
// unauthenticated"; an error means a credential exists but could not be
// opened.
type BearerSource interface {
	BearerToken(ctx context.Context) (string, error)
}

// Compile-time interface satisfaction check.
var _ driven.FeedFetcher = (*Client)(nil)

// Client is the authenticated HTTP client for the provider's read
// endpoints. The resolved Authorization header is memoized for the client's
// lifetime; create a new Client after re-authorization.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  BearerSource
	logger  *slog.Logger

	mu     sync.Mutex
	header string // Cached "Bearer ..." value; only successful resolutions stick.
}

// NewClient creates a Client against the given provider host; an empty
// baseURL selects the production host. The transport stack adds an
// in-memory ETag cache in front of the default transport.
func NewClient(tokens BearerSource, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		tokens:  tokens,
		logger:  logger,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and
// base URL. Intended for tests injecting an httptest server.
func NewClientWithHTTPClient(tokens BearerSource, httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		tokens:  tokens,
		logger:  logger,
	}
}

// authHeader resolves the Authorization header value, caching it after the
// first successful resolution. A missing credential or an unreadable secret
// degrades to an empty header so the request proceeds unauthenticated.
func (c *Client) authHeader(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.header != "" {
		return c.header
	}

	token, err := c.tokens.BearerToken(ctx)
	if err != nil {
		c.logger.Warn("bearer token resolution failed, proceeding unauthenticated", "error", err)
		return ""
	}
	if token == "" {
		return ""
	}

	c.header = "Bearer " + token
	return c.header
}

// FetchGroupFeed GETs the group-messages endpoint with threaded=true and the
// fixed page size. Failures wrap driven.ErrUpstream and carry no payload.
func (c *Client) FetchGroupFeed(ctx context.Context, groupID int64) (model.RawFeedPayload, error) {
	query := url.Values{}
	query.Set("threaded", "true")
	query.Set("limit", fmt.Sprintf("%d", feedLimit))

	endpoint := c.baseURL + fmt.Sprintf(groupMessagesPath, groupID) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.RawFeedPayload{}, fmt.Errorf("%w: group %d feed: %v", driven.ErrUpstream, groupID, err)
	}
	if header := c.authHeader(ctx); header != "" {
		req.Header.Set("Authorization", header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.RawFeedPayload{}, fmt.Errorf("%w: group %d feed: %v", driven.ErrUpstream, groupID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.RawFeedPayload{}, fmt.Errorf("%w: group %d feed: status %d", driven.ErrUpstream, groupID, resp.StatusCode)
	}

	var payload model.RawFeedPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.RawFeedPayload{}, fmt.Errorf("%w: group %d feed: decode: %v", driven.ErrUpstream, groupID, err)
	}

	return payload, nil
}

// FetchImage GETs an attachment-provided absolute URL with the same auth
// header and returns the body as an inline image. Failures wrap
// driven.ErrUpstream.
func (c *Client) FetchImage(ctx context.Context, rawURL string) (*model.InlineImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: image %s: %v", driven.ErrUpstream, rawURL, err)
	}
	if header := c.authHeader(ctx); header != "" {
		req.Header.Set("Authorization", header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: image %s: %v", driven.ErrUpstream, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image %s: status %d", driven.ErrUpstream, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: image %s: read body: %v", driven.ErrUpstream, rawURL, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &model.InlineImage{
		MimeType:   mimeType,
		Base64Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}
