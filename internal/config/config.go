// Package config loads server settings from defaults, an optional YAML
// file and SKRBNIK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the server settings.
type Config struct {
	DBPath        string        `yaml:"db" env:"SKRBNIK_DB"`
	Addr          string        `yaml:"addr" env:"SKRBNIK_ADDR"`
	LogPath       string        `yaml:"log" env:"SKRBNIK_LOG"`
	AdminIdentity string        `yaml:"admin" env:"SKRBNIK_ADMIN"`
	BlockInterval time.Duration `yaml:"block_interval" env:"SKRBNIK_BLOCK_INTERVAL"`
	Metrics       bool          `yaml:"metrics" env:"SKRBNIK_METRICS"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:        "skrbnik.db",
		Addr:          ":8080",
		AdminIdentity: "admin",
		BlockInterval: 10 * time.Second,
		Metrics:       true,
	}
}

// Load returns the defaults overlaid by the YAML file at path (skipped when
// path is empty) and then by the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is empty"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.AdminIdentity == "" || c.AdminIdentity == "null" {
		errs = append(errs, fmt.Errorf("invalid admin identity %q", c.AdminIdentity))
	}
	if c.BlockInterval <= 0 {
		errs = append(errs, fmt.Errorf("block interval must be positive, got %s", c.BlockInterval))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
