// Package config holds settings shared by the shottree commands. Values come
// from SHOTTREE_* environment variables; command flags override them.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	TaxonomyPath    string        `env:"SHOTTREE_TAXONOMY"`
	LogFormat       string        `env:"SHOTTREE_LOG_FORMAT" envDefault:"pretty"`
	LogLevel        string        `env:"SHOTTREE_LOG_LEVEL" envDefault:"info"`
	DBPath          string        `env:"SHOTTREE_DB" envDefault:"shots.db"`
	Workers         int           `env:"SHOTTREE_WORKERS" envDefault:"1"`
	FeedReadTimeout time.Duration `env:"SHOTTREE_FEED_READ_TIMEOUT" envDefault:"30s"`
	MetricsAddr     string        `env:"SHOTTREE_METRICS_ADDR"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
