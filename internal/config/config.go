package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend names accepted by GRAPHMEM_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all server configuration, populated from the environment.
type Config struct {
	Env       string `env:"GRAPHMEM_ENV" envDefault:"development"`
	Transport string `env:"GRAPHMEM_TRANSPORT" envDefault:"stdio"`
	Port      string `env:"GRAPHMEM_PORT" envDefault:"8081"`
	DataDir   string `env:"GRAPHMEM_DATA_DIR" envDefault:"./data"`
	Backend   string `env:"GRAPHMEM_BACKEND" envDefault:"file"`
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (use file or sqlite)", c.Backend)
	}
	switch c.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("unknown transport %q (use stdio or http)", c.Transport)
	}
	return nil
}
