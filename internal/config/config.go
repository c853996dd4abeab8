// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// DefaultSessionSecret is the development signing secret. Tokens signed with
// it are only as private as this source file.
const DefaultSessionSecret = "admin-secret-change-in-production"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	SessionSecret string
	RecoveryTTL   time.Duration
	RecoveryURL   string
	OutboxDir     string
	AllowedOrigin string
	PruneInterval time.Duration
	LogLevel      slog.Level
}

// UsesDefaultSecret reports whether the signing secret was left at its
// development default. The composition root warns when it is.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional:
// EXAMDESK_LISTEN_ADDR (127.0.0.1:4000), EXAMDESK_DB_PATH (examdesk.db),
// EXAMDESK_SESSION_SECRET, EXAMDESK_RECOVERY_TTL (60m),
// EXAMDESK_RECOVERY_URL (http://localhost:3001/#/recover/), EXAMDESK_OUTBOX_DIR (outbox),
// EXAMDESK_ALLOWED_ORIGIN (*), EXAMDESK_PRUNE_INTERVAL (1h, 0 disables),
// EXAMDESK_LOG_LEVEL (info).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    envOr("EXAMDESK_LISTEN_ADDR", "127.0.0.1:4000"),
		DBPath:        envOr("EXAMDESK_DB_PATH", "examdesk.db"),
		SessionSecret: envOr("EXAMDESK_SESSION_SECRET", DefaultSessionSecret),
		RecoveryURL:   envOr("EXAMDESK_RECOVERY_URL", "http://localhost:3001/#/recover/"),
		OutboxDir:     envOr("EXAMDESK_OUTBOX_DIR", "outbox"),
		AllowedOrigin: envOr("EXAMDESK_ALLOWED_ORIGIN", "*"),
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("EXAMDESK_SESSION_SECRET must not be empty")
	}

	var err error
	if cfg.RecoveryTTL, err = durationEnv("EXAMDESK_RECOVERY_TTL", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RecoveryTTL <= 0 {
		return nil, fmt.Errorf("EXAMDESK_RECOVERY_TTL must be positive, got %s", cfg.RecoveryTTL)
	}

	if cfg.PruneInterval, err = durationEnv("EXAMDESK_PRUNE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.PruneInterval < 0 {
		return nil, fmt.Errorf("EXAMDESK_PRUNE_INTERVAL must not be negative, got %s", cfg.PruneInterval)
	}

	cfg.LogLevel = slog.LevelInfo
	if v, ok := os.LookupEnv("EXAMDESK_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			return nil, fmt.Errorf("EXAMDESK_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}
