package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yamfeedhq/yamfeed/internal/application"
	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// LoginURLFunc builds the provider authorization URL for a login attempt,
// baking the given post-login return path into the redirect.
type LoginURLFunc func(returnPath string) string

// Handler is the HTTP driving adapter that serves the REST API and the
// OAuth browser flow.
type Handler struct {
	feeds      *application.FeedService
	auth       *application.AuthService
	identities driven.IdentityStore
	loginURL   LoginURLFunc
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	feeds *application.FeedService,
	auth *application.AuthService,
	identities driven.IdentityStore,
	loginURL LoginURLFunc,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		feeds:      feeds,
		auth:       auth,
		identities: identities,
		loginURL:   loginURL,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/groups/{id}/feed", h.GroupFeed)
	mux.HandleFunc("POST /api/v1/identities", h.CreateIdentity)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GroupFeed returns the normalized feed for a group.
func (h *Handler) GroupFeed(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	feed, err := h.feeds.GroupFeed(r.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to build group feed", "group_id", groupID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toFeedResponse(feed))
}

// CreateIdentity registers a new identity and returns it with its minted ref.
func (h *Handler) CreateIdentity(w http.ResponseWriter, r *http.Request) {
	var req CreateIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" && req.Email == "" {
		writeError(w, http.StatusBadRequest, "username or email is required")
		return
	}

	created, err := h.identities.Create(r.Context(), model.Identity{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		h.logger.Error("failed to create identity", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toIdentityResponse(created))
}

// Login redirects the browser to the provider's authorization page. An
// optional "return" query parameter names the path to come back to after
// the callback completes.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	returnPath := r.URL.Query().Get("return")
	http.Redirect(w, r, h.loginURL(returnPath), http.StatusFound)
}

// Callback completes the OAuth flow: it exchanges the authorization code,
// binds the token, and sends the browser back to where it came from.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	target, err := h.auth.Callback(r.Context(),
		query.Get("identity"),
		query.Get("code"),
		query.Get("redirect_path"),
	)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrMissingCode), errors.Is(err, application.ErrNoBindTarget):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, driven.ErrIdentityNotFound):
			writeError(w, http.StatusNotFound, "identity not found")
		case errors.Is(err, driven.ErrUpstream):
			h.logger.Error("token exchange failed", "error", err)
			writeError(w, http.StatusBadGateway, "authorization provider unavailable")
		default:
			h.logger.Error("auth callback failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
