// Package app assembles the ideagraph HTTP service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/ideagraph/internal/api"
	"github.com/dgallion1/ideagraph/internal/auth"
	"github.com/dgallion1/ideagraph/internal/config"
	"github.com/dgallion1/ideagraph/internal/metrics"
	"github.com/dgallion1/ideagraph/internal/mindmap"
	"github.com/dgallion1/ideagraph/internal/parser"
	"github.com/dgallion1/ideagraph/internal/revisions"
	"github.com/dgallion1/ideagraph/internal/stats"
)

// ParserOptions maps configuration onto parser options.
func ParserOptions(cfg config.Config) parser.Options {
	return parser.Options{
		TabWidth:          cfg.TabWidth,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
	}
}

// NewRevisionsClient builds the Drive client described by cfg.
func NewRevisionsClient(cfg config.Config, m *metrics.Metrics, log *slog.Logger) *revisions.Client {
	return revisions.NewClient(revisions.Config{
		Endpoint:       cfg.DriveEndpoint,
		Concurrency:    cfg.ExportConcurrency,
		MaxExportBytes: cfg.MaxExportBytes,
		Timeout:        cfg.DriveTimeout,
	}, stats.NewLatency(cfg.LatencyWindow), m, log)
}

// NewHandler wires every collaborator and returns the API handler. The
// OAuth state cleanup loop runs until ctx is done.
func NewHandler(ctx context.Context, cfg config.Config, log *slog.Logger) (*api.Server, error) {
	m := metrics.New()

	var provider *auth.Provider
	if cfg.OAuthEnabled() {
		p, err := auth.NewProvider(auth.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			StateTTL:     cfg.OAuthStateTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("auth provider: %w", err)
		}
		go p.States().Run(ctx, time.Minute)
		provider = p
	} else {
		log.Warn("drive sign-in disabled", "reason", auth.ErrNotConfigured)
	}

	return api.NewServer(api.Deps{
		Builder:   mindmap.NewBuilder(ParserOptions(cfg), m, log),
		Revisions: NewRevisionsClient(cfg, m, log),
		Auth:      provider,
		Metrics:   m,
	}, log, cfg), nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	handler, err := NewHandler(ctx, cfg, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting ideagraph", "port", cfg.Port, "oauth", cfg.OAuthEnabled())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
