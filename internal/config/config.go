// Package config handles engine configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDurationDays = 1
	DefaultInitialGap   = 1000.0
	DefaultMinGap       = 0.001
)

// Config holds the tunable engine defaults. All fields have working
// defaults; a config file only needs the keys it wants to change.
type Config struct {
	// DefaultDurationDays is assumed for tasks with no dates during
	// critical-path analysis.
	DefaultDurationDays int `toml:"default_duration_days"`

	// InitialGap spaces sort_order keys on first assignment and after a
	// renormalization.
	InitialGap float64 `toml:"initial_gap"`

	// MinGap is the sort_order distance below which a midpoint insertion
	// renumbers the whole project instead.
	MinGap float64 `toml:"min_gap"`
}

// Default returns a Config with every field at its default.
func Default() *Config {
	return &Config{
		DefaultDurationDays: DefaultDurationDays,
		InitialGap:          DefaultInitialGap,
		MinGap:              DefaultMinGap,
	}
}

// Load reads configuration with the given path taking precedence over the
// discovered project file. An empty path with no project file returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findProjectConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultDurationDays < 1 {
		return fmt.Errorf("default_duration_days must be at least 1, got %d", c.DefaultDurationDays)
	}
	if c.InitialGap <= 0 {
		return fmt.Errorf("initial_gap must be positive, got %v", c.InitialGap)
	}
	if c.MinGap <= 0 {
		return fmt.Errorf("min_gap must be positive, got %v", c.MinGap)
	}
	if c.MinGap >= c.InitialGap {
		return fmt.Errorf("min_gap %v must be smaller than initial_gap %v", c.MinGap, c.InitialGap)
	}
	return nil
}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{"ganttcore.toml", ".ganttcore.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Write saves the config to the given path, creating parent directories.
func (c *Config) Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
