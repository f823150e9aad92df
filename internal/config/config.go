// Package config loads vex.yaml, the per-project configuration for
// the checker driver: warning policy, check-cache settings and output
// formatting.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceFileExtensions lists the AST dump extensions the driver
// recognizes as input.
var SourceFileExtensions = []string{".vex.json"}

// ConfigFileName is the name searched for when no explicit config
// path is given.
const ConfigFileName = "vex.yaml"

// Config represents the top-level vex.yaml configuration.
type Config struct {
	Warnings WarningsConfig `yaml:"warnings"`
	Cache    CacheConfig    `yaml:"cache"`
	Output   OutputConfig   `yaml:"output"`
}

// WarningsConfig controls non-fatal diagnostics.
type WarningsConfig struct {
	// Unused enables unused-variable warnings. Defaults to true.
	Unused *bool `yaml:"unused,omitempty"`

	// AsErrors makes any warning fail the check.
	AsErrors bool `yaml:"as_errors,omitempty"`
}

// CacheConfig controls the incremental check cache.
type CacheConfig struct {
	// Enabled turns the cache on. Defaults to false.
	Enabled bool `yaml:"enabled,omitempty"`

	// Path is the cache database location, relative to the config
	// file. Defaults to ".vex-cache.db".
	Path string `yaml:"path,omitempty"`
}

// OutputConfig controls diagnostic rendering.
type OutputConfig struct {
	// Color is "auto", "always" or "never". Defaults to "auto".
	Color string `yaml:"color,omitempty"`
}

// Default returns the configuration used when no vex.yaml exists.
func Default() *Config {
	unused := true
	return &Config{
		Warnings: WarningsConfig{Unused: &unused},
		Cache:    CacheConfig{Path: ".vex-cache.db"},
		Output:   OutputConfig{Color: "auto"},
	}
}

// UnusedWarnings reports whether unused-variable warnings are on.
func (c *Config) UnusedWarnings() bool {
	return c.Warnings.Unused == nil || *c.Warnings.Unused
}

// Load reads and parses a vex.yaml file, filling defaults for omitted
// fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = ".vex-cache.db"
	}
	if !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(filepath.Dir(path), cfg.Cache.Path)
	}
	return cfg, nil
}

// Find walks from dir upward looking for vex.yaml. It returns the
// empty string when no config file exists.
func Find(dir string) string {
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	switch c.Output.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	return nil
}
