// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings for the server process.
type Config struct {
	// Addr is the listen address for the HTTP API.
	Addr string `env:"ESTATESIM_ADDR" envDefault:":8080"`
	// DBPath is the SQLite database file. ":memory:" keeps everything
	// ephemeral.
	DBPath string `env:"ESTATESIM_DB" envDefault:"estatesim.db"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"ESTATESIM_LOG_LEVEL" envDefault:"info"`
	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration `env:"ESTATESIM_REQUEST_TIMEOUT" envDefault:"60s"`
	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `env:"ESTATESIM_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
