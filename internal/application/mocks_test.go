package application_test

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// --- Mock implementations ---

type mockIdentityStore struct {
	identities []model.Identity
	findErr    error
	findCalls  int
}

func (m *mockIdentityStore) Create(_ context.Context, identity model.Identity) (model.Identity, error) {
	m.identities = append(m.identities, identity)
	return identity, nil
}

func (m *mockIdentityStore) LoadByRef(_ context.Context, ref string) (model.Identity, error) {
	for _, identity := range m.identities {
		if identity.Ref == ref {
			return identity, nil
		}
	}
	return model.Identity{}, fmt.Errorf("%w: %q", driven.ErrIdentityNotFound, ref)
}

func (m *mockIdentityStore) FindByAttributes(_ context.Context, attrs map[string]string) ([]model.Identity, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}

	var matches []model.Identity
	for _, identity := range m.identities {
		if identityMatches(identity, attrs) {
			matches = append(matches, identity)
		}
	}
	return matches, nil
}

func identityMatches(identity model.Identity, attrs map[string]string) bool {
	for name, value := range attrs {
		switch name {
		case "username":
			if identity.Username != value {
				return false
			}
		case "email":
			if identity.Email != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type mockTokenStore struct {
	tokens  map[string]model.Token
	saveErr error
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{tokens: make(map[string]model.Token)}
}

func (m *mockTokenStore) Load(_ context.Context, identityRef string) (model.Token, error) {
	token, ok := m.tokens[identityRef]
	if !ok {
		return model.Token{}, nil
	}
	return token, nil
}

func (m *mockTokenStore) Save(_ context.Context, identityRef string, token model.Token) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tokens[identityRef] = token
	return nil
}

// passthroughCipher prefixes instead of encrypting so tests can assert on
// the transformation without real keys.
type passthroughCipher struct {
	decryptErr error
}

func (passthroughCipher) Encrypt(plaintext string) (string, error) {
	return "sealed:" + plaintext, nil
}

func (c passthroughCipher) Decrypt(ciphertext string) (string, error) {
	if c.decryptErr != nil {
		return "", c.decryptErr
	}
	return ciphertext[len("sealed:"):], nil
}

type mockExchanger struct {
	token model.Token
	err   error
	codes []string
}

func (m *mockExchanger) Exchange(_ context.Context, code string) (model.Token, error) {
	m.codes = append(m.codes, code)
	if m.err != nil {
		return model.Token{}, m.err
	}
	return m.token, nil
}

type mockFeedFetcher struct {
	payload  model.RawFeedPayload
	fetchErr error

	images   map[string]*model.InlineImage
	imageErr error
	fetched  []string
}

func (m *mockFeedFetcher) FetchGroupFeed(_ context.Context, _ int64) (model.RawFeedPayload, error) {
	if m.fetchErr != nil {
		return model.RawFeedPayload{}, m.fetchErr
	}
	return m.payload, nil
}

func (m *mockFeedFetcher) FetchImage(ctx context.Context, url string) (*model.InlineImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.fetched = append(m.fetched, url)
	if m.imageErr != nil {
		return nil, m.imageErr
	}
	if img, ok := m.images[url]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("%w: no image at %s", driven.ErrUpstream, url)
}
