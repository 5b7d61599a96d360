package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds per-project metadata stored alongside the database.
type Config struct {
	Project ProjectConfig `toml:"project"`
}

// ProjectConfig holds project-level settings consumed at store-open
// time.
type ProjectConfig struct {
	Name            string `toml:"name"`
	IDPrefix        string `toml:"id_prefix"`
	DefaultPriority int    `toml:"default_priority"`
}

// Default returns the default configuration for a project root.
func Default(projectName string) *Config {
	return &Config{
		Project: ProjectConfig{
			Name:            projectName,
			IDPrefix:        "ch",
			DefaultPriority: 2,
		},
	}
}

// LoadFrom loads configuration from a specific path, falling back to
// defaults when the file does not exist.
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default(filepath.Base(filepath.Dir(filepath.Dir(configPath))))

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Project.IDPrefix == "" {
		cfg.Project.IDPrefix = "ch"
	}

	return cfg, nil
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
