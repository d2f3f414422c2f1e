package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth for this API. Empty disables the check.
	APIKey string

	// Google OAuth client for Drive sign-in. Empty disables /auth.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OAuthStateTTL      time.Duration

	// Drive revisions
	DriveEndpoint     string
	DriveTimeout      time.Duration
	ExportConcurrency int
	MaxExportBytes    int64
	LatencyWindow     time.Duration

	// Upload limits
	MaxUploadBytes int64
	MaxBatchFiles  int

	// Outline parsing
	TabWidth int

	// PDF
	PDFFallbackPdftotext bool

	// envFileErr is a .env file that exists but could not be read.
	envFileErr error
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory if one exists. Real environment variables win.
// A .env file that exists but cannot be read is reported by Validate.
func Load() Config {
	var envFileErr error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		envFileErr = fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("IDEAGRAPH_API_KEY"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", "http://localhost:8090/auth/callback"),
		OAuthStateTTL:      envDuration("OAUTH_STATE_TTL", 10*time.Minute),

		DriveEndpoint:     os.Getenv("DRIVE_ENDPOINT"),
		DriveTimeout:      envDuration("DRIVE_TIMEOUT", 30*time.Second),
		ExportConcurrency: envInt("EXPORT_CONCURRENCY", 4),
		MaxExportBytes:    envInt64("MAX_EXPORT_BYTES", 10485760), // 10MB
		LatencyWindow:     envDuration("LATENCY_WINDOW", 1*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB
		MaxBatchFiles:  envInt("MAX_BATCH_FILES", 20),

		TabWidth: envInt("TAB_WIDTH", 1),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		envFileErr: envFileErr,
	}

	if cfg.OAuthStateTTL <= 0 {
		cfg.OAuthStateTTL = 10 * time.Minute
	}
	if cfg.DriveTimeout <= 0 {
		cfg.DriveTimeout = 30 * time.Second
	}
	if cfg.ExportConcurrency <= 0 {
		cfg.ExportConcurrency = 4
	}
	if cfg.MaxExportBytes <= 0 {
		cfg.MaxExportBytes = 10485760
	}
	if cfg.LatencyWindow <= 0 {
		cfg.LatencyWindow = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.MaxBatchFiles <= 0 {
		cfg.MaxBatchFiles = 20
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 1
	}

	return cfg
}

// Validate rejects an unreadable .env file and half-configured OAuth
// clients. Everything else has a working default.
func (c Config) Validate() error {
	if c.envFileErr != nil {
		return c.envFileErr
	}
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	if c.GoogleClientID != "" && c.GoogleRedirectURL == "" {
		return fmt.Errorf("GOOGLE_REDIRECT_URL is required when GOOGLE_CLIENT_ID is set")
	}
	if c.TabWidth > 16 {
		return fmt.Errorf("TAB_WIDTH must be between 1 and 16, got %d", c.TabWidth)
	}
	return nil
}

// OAuthEnabled reports whether Drive sign-in is configured.
func (c Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
