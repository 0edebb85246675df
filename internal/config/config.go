package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration sourced from the environment.
type Config struct {
	// APIToken authenticates outbound requests against the upstream
	// catalog API. The process refuses to start without it.
	APIToken string `env:"API_TOKEN,required"`

	Port      int    `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"MIRROR_DB" envDefault:"db.sqlite"`
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`

	// TTL is how long the mirrored catalog is considered fresh.
	TTL time.Duration `env:"MIRROR_TTL" envDefault:"300s"`

	UpstreamURL string `env:"UPSTREAM_URL" envDefault:"https://minecraft.curseforge.com"`

	// UpstreamTimeout bounds a single upstream fetch. Zero means no
	// timeout, matching the historical behavior of the service.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"0"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	if cfg.APIToken == "" {
		return Config{}, fmt.Errorf("API_TOKEN not set")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 300 * time.Second
	}
	cfg.UpstreamURL = strings.TrimRight(strings.TrimSpace(cfg.UpstreamURL), "/")
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}
