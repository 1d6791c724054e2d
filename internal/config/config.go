package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings. Flags override these values.
type Config struct {
	DBPath        string
	Addr          string
	WebhookSecret string
	DrainInterval time.Duration
}

// Load reads configuration from the environment, after loading a local
// .env file if one exists.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:        getenv("MATKARNIA_DB", "matkarnia.sqlite3"),
		Addr:          getenv("MATKARNIA_ADDR", ":8080"),
		WebhookSecret: os.Getenv("MATKARNIA_WEBHOOK_SECRET"),
		DrainInterval: 5 * time.Second,
	}

	if v := os.Getenv("MATKARNIA_DRAIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DrainInterval = d
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
