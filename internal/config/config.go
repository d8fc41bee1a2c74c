package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// DatabaseURL selects the postgres store; empty runs in-memory.
	DatabaseURL string

	// HeartbeatInterval paces push-channel heartbeat frames.
	HeartbeatInterval time.Duration
}

// Load reads .env if present, then the environment, falling back to
// defaults suitable for local development.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:              ":8080",
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HeartbeatInterval: 25 * time.Second,
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if raw := os.Getenv("HEARTBEAT_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.HeartbeatInterval = d
		}
	}
	return cfg
}
