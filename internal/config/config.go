// Package config reads process settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"bookkeeping/internal/logging"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	DatabaseURL    string
	Store          string
	ServerPort     string
	AllowedOrigins []string
	JWTSecret      string
	OpenAIAPIKey   string
	OpenAIModel    string
	LogLevel       string
	LogFormat      logging.Format
}

// Load reads .env (when present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:  getenv("DATABASE_URL"),
		Store:        strings.ToLower(strings.TrimSpace(getenv("STORE"))),
		ServerPort:   getenv("SERVER_PORT"),
		JWTSecret:    getenv("JWT_SECRET"),
		OpenAIAPIKey: getenv("OPENAI_API_KEY"),
		OpenAIModel:  getenv("OPENAI_MODEL"),
		LogLevel:     getenv("LOG_LEVEL"),
		LogFormat:    logging.Format(strings.ToLower(getenv("LOG_FORMAT"))),
	}
	if cfg.Store == "" {
		cfg.Store = StorePostgres
	}
	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}
	if cfg.Store == StorePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = logging.FormatJSON
	}
	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:" + cfg.ServerPort}
	}
	return cfg, nil
}
