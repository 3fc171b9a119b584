// Package config loads the small on-disk configuration a caller uses to
// open a Context against a real database directory. This core has no CLI
// and reads no environment variables (spec.md §6); Config exists purely
// as an embeddable struct, grounded on the teacher's own YAML config
// loader.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config configures the on-disk object store a Context opens.
type Config struct {
	Path             string `yaml:"path"`
	MinimumFreeSpace int    `yaml:"minimumFreeSpaceGB"`
	Variant          string `yaml:"variant"` // "ADDS" or "ADLDS"
	LogLevel         string `yaml:"logLevel"`
}

// Default returns a Config with the defaults the teacher's loader applies
// when a field is left zero in the YAML document.
func Default() Config {
	return Config{
		Path:             ".",
		MinimumFreeSpace: 1,
		Variant:          "ADDS",
		LogLevel:         "info",
	}
}

// Load reads a Config from a YAML file, filling in defaults for any field
// left unset. Field values are not otherwise checked.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	if cfg.Path == "" {
		cfg.Path = "."
	}
	if cfg.MinimumFreeSpace == 0 {
		cfg.MinimumFreeSpace = 1
	}
	if cfg.Variant == "" {
		cfg.Variant = "ADDS"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}
