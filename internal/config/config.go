// Package config reads runtime settings from the environment, loading a
// .env file first outside production.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/TWRT/pm-dashboard/internal/cache"
	"github.com/TWRT/pm-dashboard/internal/client"
)

type Config struct {
	APIURL         string
	AccessToken    string
	TokenFile      string
	SessionSubject string
	Username       string
	HTTPTimeout    time.Duration
	KeepUnusedFor  time.Duration

	// reference server
	ListenAddr  string
	DBPath      string
	ServerToken string

	SettingsDB string
}

// Load reads the environment. A missing .env file is only an error when
// APP_ENV is "production"; there it is never read.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, using environment")
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIURL:         EnvOrDefault("PM_API_URL", "http://localhost:8080"),
		AccessToken:    os.Getenv("PM_ACCESS_TOKEN"),
		TokenFile:      EnvOrDefault("PM_TOKEN_FILE", defaultTokenFile()),
		SessionSubject: os.Getenv("PM_SESSION_SUBJECT"),
		Username:       os.Getenv("PM_USERNAME"),
		ListenAddr:     EnvOrDefault("PM_LISTEN_ADDR", ":8080"),
		DBPath:         EnvOrDefault("PM_DB_PATH", "./pmdash.db"),
		ServerToken:    os.Getenv("PM_SERVER_TOKEN"),
		SettingsDB:     os.Getenv("PM_SETTINGS_DB"),
	}

	var err error
	if cfg.HTTPTimeout, err = duration("PM_HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.KeepUnusedFor, err = duration("PM_KEEP_UNUSED_FOR", cache.DefaultKeepUnusedFor); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Session picks a static token when one is configured and falls back to
// reading the token file on every request.
func (c *Config) Session() client.SessionProvider {
	if c.AccessToken != "" {
		return client.StaticSession{Token: c.AccessToken, Subject: c.SessionSubject, Username: c.Username}
	}
	return client.FileSession{Path: c.TokenFile, Subject: c.SessionSubject, Username: c.Username}
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: negative duration %s", key, raw)
	}
	return d, nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pmdash", ".token")
	}
	return filepath.Join(home, ".pmdash", ".token")
}
