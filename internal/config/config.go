package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string
	Env        string

	TokenStorePath string

	NotifyPollInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	pollInterval, err := time.ParseDuration(getEnv("NOTIFY_POLL_INTERVAL", "30s"))
	if err != nil {
		pollInterval = 30 * time.Second
	}

	return &Config{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8000/api/v1"),
		Env:        getEnv("ENV", "development"),

		TokenStorePath: getEnv("TOKEN_STORE_PATH", defaultTokenStorePath()),

		NotifyPollInterval: pollInterval,
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultTokenStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return dir + "/teampulse/session.db"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
