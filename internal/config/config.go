// Package config loads findr configuration from an optional YAML file,
// merging file values over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HistoryConfig represents search-history configuration
type HistoryConfig struct {
	// Enabled records completed searches in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (~ is expanded)
	DBPath string `yaml:"db_path"`

	// Keep is the maximum number of history rows retained
	Keep int `yaml:"keep"`
}

// Config represents findr configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// FollowSymlinks descends into symlinked directories by default
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// SkipHidden skips dot-entries by default
	SkipHidden bool `yaml:"skip_hidden"`

	// Exclude holds default exclude patterns applied to every search
	Exclude []string `yaml:"exclude"`

	// History contains search-history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		FollowSymlinks: false,
		SkipHidden:     false,
		Exclude:        []string{".git", "node_modules"},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "~/.findr/history.db",
			Keep:    500,
		},
	}
}

// DefaultConfigPath returns the conventional config location, ~/.findr.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".findr.yaml"
	}
	return filepath.Join(home, ".findr.yaml")
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.FollowSymlinks {
		cfg.FollowSymlinks = true
	}
	if fileCfg.SkipHidden {
		cfg.SkipHidden = true
	}
	if fileCfg.Exclude != nil {
		cfg.Exclude = fileCfg.Exclude
	}

	// Merge the history section only if it was present at all, so an
	// omitted section keeps every default rather than zeroing Enabled.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, exists := rawMap["history"]; exists && section != nil {
			cfg.History.Enabled = fileCfg.History.Enabled
			if fileCfg.History.DBPath != "" {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
			if fileCfg.History.Keep != 0 {
				cfg.History.Keep = fileCfg.History.Keep
			}
		}
	}

	return cfg, nil
}

// ExpandedDBPath returns the history database path with a leading ~
// expanded to the user's home directory.
func (c *Config) ExpandedDBPath() string {
	path := c.History.DBPath
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
