package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pantainos/fmp/pkg/models"
)

// Config holds all server configuration.
type Config struct {
	APIKey    string          `yaml:"api_key"`
	BaseURL   string          `yaml:"base_url"`
	Timeout   models.Duration `yaml:"timeout"`
	RateLimit float64         `yaml:"rate_limit"`
	RateBurst int             `yaml:"rate_burst"`
	Retries   int             `yaml:"retries"`
	DBPath    string          `yaml:"db_path"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	// FamiliesPath optionally points at a YAML file overriding the
	// built-in data-family registry.
	FamiliesPath string `yaml:"families_path"`
}

// TrackingConfig controls the upstream-call tracker.
type TrackingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a Config with sensible defaults. The API key comes
// from the environment so it never has to live in a file.
func Default() *Config {
	return &Config{
		APIKey:    os.Getenv("FMP_API_KEY"),
		BaseURL:   "https://financialmodelingprep.com",
		Timeout:   models.Duration(30 * time.Second),
		RateLimit: 8,
		RateBurst: 4,
		Retries:   2,
		DBPath:    "fmp.db",
		Tracking:  TrackingConfig{Enabled: true},
	}
}

// Load reads a YAML config file and expands environment variables.
// A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
