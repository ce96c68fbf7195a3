package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	cryptoadapter "github.com/yamfeedhq/yamfeed/internal/adapter/driven/crypto"
	sqliteadapter "github.com/yamfeedhq/yamfeed/internal/adapter/driven/sqlite"
	"github.com/yamfeedhq/yamfeed/internal/adapter/driven/yammer"
	httphandler "github.com/yamfeedhq/yamfeed/internal/adapter/driving/http"
	"github.com/yamfeedhq/yamfeed/internal/application"
	"github.com/yamfeedhq/yamfeed/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"base_url", cfg.BaseURL,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters. Cipher construction fails fast on a missing
	// or malformed key, before any traffic is served.
	cipher, err := cryptoadapter.NewCipher(cryptoadapter.TokenProfile, cfg.EncryptionProfiles)
	if err != nil {
		return err
	}

	identityStore := sqliteadapter.NewIdentityRepo(db)
	tokenStore := sqliteadapter.NewTokenRepo(db)

	// 6. Wire application services.
	logger := slog.Default()
	tokenSvc := application.NewTokenService(identityStore, tokenStore, cipher, cfg.ServiceAccount, logger)

	exchanger := yammer.NewExchanger(cfg.ClientID, cfg.ClientSecret, cipher, cfg.BaseURL, cfg.HTTPTimeout)
	authSvc := application.NewAuthService(exchanger, tokenSvc, logger)

	feedClient := yammer.NewClient(tokenSvc, cfg.BaseURL, cfg.HTTPTimeout, logger)
	normalizer := application.NewNormalizer(feedClient, cfg.DateFormat, cfg.ImageFetchLimit, logger)
	feedSvc := application.NewFeedService(feedClient, normalizer, logger)

	// 7. Create HTTP handler and register routes.
	loginURL := func(returnPath string) string {
		return yammer.LoginURL(cfg.BaseURL, cfg.ClientID, cfg.RedirectURL, returnPath)
	}
	apiHandler := httphandler.NewHandler(feedSvc, authSvc, identityStore, loginURL, logger)
	handler := httphandler.NewServeMux(apiHandler, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("yamfeed started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
