// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	RedirectURL  string

	// EncryptionProfiles maps profile names to raw AES keys. Key material
	// arrives base64-encoded in the environment and is decoded here; key
	// length validation belongs to the cipher.
	EncryptionProfiles map[string][]byte

	// ServiceAccount holds the attribute filters used to resolve the
	// service identity, e.g. {"username": "feedbot"}.
	ServiceAccount map[string]string

	DateFormat      string
	ListenAddr      string
	DBPath          string
	HTTPTimeout     time.Duration
	ImageFetchLimit int
}

// HasProviderCredentials returns true when both ClientID and ClientSecret
// are non-empty. The composition root refuses to start without them.
func (c *Config) HasProviderCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// Required: YAMFEED_CLIENT_ID, YAMFEED_CLIENT_SECRET, YAMFEED_ENCRYPTION_PROFILES,
// YAMFEED_REDIRECT_URL. Optional variables with defaults:
// YAMFEED_BASE_URL (https://www.yammer.com), YAMFEED_DATE_FORMAT (Jan 2, 2006 3:04 PM),
// YAMFEED_LISTEN_ADDR (127.0.0.1:8080), YAMFEED_DB_PATH (yamfeed.db),
// YAMFEED_HTTP_TIMEOUT (15s), YAMFEED_IMAGE_FETCH_LIMIT (4),
// YAMFEED_SERVICE_ACCOUNT (empty, "attr=value" pairs separated by commas).
func Load() (*Config, error) {
	clientID := os.Getenv("YAMFEED_CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("YAMFEED_CLIENT_ID is required")
	}
	clientSecret := os.Getenv("YAMFEED_CLIENT_SECRET")
	if clientSecret == "" {
		return nil, fmt.Errorf("YAMFEED_CLIENT_SECRET is required")
	}

	profiles, err := parseEncryptionProfiles(os.Getenv("YAMFEED_ENCRYPTION_PROFILES"))
	if err != nil {
		return nil, err
	}

	redirectURL := os.Getenv("YAMFEED_REDIRECT_URL")
	if redirectURL == "" {
		return nil, fmt.Errorf("YAMFEED_REDIRECT_URL is required")
	}

	baseURL := "https://www.yammer.com"
	if v, ok := os.LookupEnv("YAMFEED_BASE_URL"); ok {
		baseURL = strings.TrimRight(v, "/")
	}

	dateFormat := "Jan 2, 2006 3:04 PM"
	if v, ok := os.LookupEnv("YAMFEED_DATE_FORMAT"); ok {
		dateFormat = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("YAMFEED_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "yamfeed.db"
	if v, ok := os.LookupEnv("YAMFEED_DB_PATH"); ok {
		dbPath = v
	}

	httpTimeout := 15 * time.Second
	if v, ok := os.LookupEnv("YAMFEED_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("YAMFEED_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		httpTimeout = parsed
	}

	imageFetchLimit := 4
	if v, ok := os.LookupEnv("YAMFEED_IMAGE_FETCH_LIMIT"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("YAMFEED_IMAGE_FETCH_LIMIT must be a positive integer, got %q", v)
		}
		imageFetchLimit = parsed
	}

	serviceAccount, err := parsePairs(os.Getenv("YAMFEED_SERVICE_ACCOUNT"), "YAMFEED_SERVICE_ACCOUNT")
	if err != nil {
		return nil, err
	}

	return &Config{
		ClientID:           clientID,
		ClientSecret:       clientSecret,
		BaseURL:            baseURL,
		RedirectURL:        redirectURL,
		EncryptionProfiles: profiles,
		ServiceAccount:     serviceAccount,
		DateFormat:         dateFormat,
		ListenAddr:         listenAddr,
		DBPath:             dbPath,
		HTTPTimeout:        httpTimeout,
		ImageFetchLimit:    imageFetchLimit,
	}, nil
}

// parseEncryptionProfiles parses "name=base64key" pairs separated by commas.
// At least one profile is required.
func parseEncryptionProfiles(raw string) (map[string][]byte, error) {
	pairs, err := parsePairs(raw, "YAMFEED_ENCRYPTION_PROFILES")
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("YAMFEED_ENCRYPTION_PROFILES is required")
	}

	profiles := make(map[string][]byte, len(pairs))
	for name, encoded := range pairs {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("YAMFEED_ENCRYPTION_PROFILES: profile %q key is not valid base64: %w", name, err)
		}
		profiles[name] = key
	}
	return profiles, nil
}

func parsePairs(raw, envName string) (map[string]string, error) {
	pairs := make(map[string]string)
	if raw == "" {
		return pairs, nil
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%s has malformed entry %q, want name=value", envName, entry)
		}
		pairs[name] = value
	}
	return pairs, nil
}
