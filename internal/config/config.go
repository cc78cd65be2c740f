// Package config loads the application configuration from a YAML file,
// with environment variables overriding individual keys.
//
// The file path comes from, in priority order:
//  1. the --config flag
//  2. the CONFIG_PATH environment variable
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends understood by StorageBackend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the root configuration structure. Every field maps to a YAML
// key and can be overridden by the env var named in its env tag.
type Config struct {
	// Env selects log format and verbosity: "dev", "staging" or "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the contacts file (json) or database file (sqlite).
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	StorageBackend string `yaml:"storage_backend" env:"STORAGE_BACKEND" env-default:"json"`

	// ResetUnreadable moves a malformed store aside and starts empty
	// instead of refusing to start.
	ResetUnreadable bool `yaml:"reset_unreadable" env:"RESET_UNREADABLE" env-default:"false"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings for the REST adapter.
type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// ErrNoPath is returned when neither the flag nor CONFIG_PATH names a file.
var ErrNoPath = errors.New("config path is not set: use --config flag or CONFIG_PATH env var")

// Load resolves the config path, reads the file and validates the result.
// flagPath wins over CONFIG_PATH when both are set.
func Load(flagPath string) (*Config, error) {
	configPath := flagPath
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		return nil, ErrNoPath
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendJSON, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown storage_backend %q: want %q or %q",
			cfg.StorageBackend, BackendJSON, BackendSQLite)
	}

	return &cfg, nil
}
