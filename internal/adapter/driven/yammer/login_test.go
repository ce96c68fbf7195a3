package yammer_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamfeedhq/yamfeed/internal/adapter/driven/yammer"
)

func TestLoginURL(t *testing.T) {
	raw := yammer.LoginURL("https://www.yammer.com", "client-id", "https://host.example/auth/callback", "/news")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "www.yammer.com", parsed.Host)
	assert.Equal(t, "/oauth2/authorize", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))

	redirect, err := url.Parse(query.Get("redirect_uri"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/callback", redirect.Path)
	assert.Equal(t, "/news", redirect.Query().Get("redirect_path"))
}

func TestLoginURL_NoReturnPath(t *testing.T) {
	raw := yammer.LoginURL("https://www.yammer.com", "client-id", "https://host.example/auth/callback", "")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://host.example/auth/callback", parsed.Query().Get("redirect_uri"))
}
