package receiver

import (
	"fmt"
	"os"
	"time"
)

// Config is a configuration for the webhook receiver application
type Config struct {
	HTTPAddr    string
	DatabaseDSN string
	// RedisAddr enables redelivery dedupe through Redis when set.
	RedisAddr string
	DedupeTTL time.Duration
	// RepoBackend is "pg" (default) or "mem"; mem is for tests only.
	RepoBackend string
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:    "localhost:8080",
		DedupeTTL:   24 * time.Hour,
		RepoBackend: "pg",
	}
}

// ConfigFromEnv reads HTTP_ADDR, DB_DSN, REDIS_ADDR, DEDUPE_TTL and REPO_BACKEND.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseDSN = getenv("DB_DSN", "")
	cfg.RedisAddr = getenv("REDIS_ADDR", "")
	cfg.RepoBackend = getenv("REPO_BACKEND", cfg.RepoBackend)

	if v := os.Getenv("DEDUPE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing DEDUPE_TTL: %w", err)
		}
		cfg.DedupeTTL = ttl
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
