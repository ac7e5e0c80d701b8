// Package config provides configuration loading and structs for the songsearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Auth    AuthConfig    `yaml:"auth"`
	Library LibraryConfig `yaml:"library"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the song database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SearchConfig holds search, suggestion, and cache settings.
type SearchConfig struct {
	DefaultLimit       int  `yaml:"default_limit"`
	MaxLimit           int  `yaml:"max_limit"`
	SuggestionLimit    int  `yaml:"suggestion_limit"`
	SuggestionMaxLimit int  `yaml:"suggestion_max_limit"`
	CacheEnabled       bool `yaml:"cache_enabled"`
	CacheTTLSeconds    int  `yaml:"cache_ttl_seconds"`
	CacheSize          int  `yaml:"cache_size"`
}

// AuthToken maps a bearer token to a user identity.
type AuthToken struct {
	Token  string `yaml:"token"`
	UserID string `yaml:"user_id"`
}

// AuthConfig holds the static bearer token table.
type AuthConfig struct {
	Tokens []AuthToken `yaml:"tokens"`
}

// LibraryConfig holds the ChordPro library watcher settings.
type LibraryConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	OwnerID     string   `yaml:"owner_id"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (l *LibraryConfig) RecursiveOrDefault() bool {
	if l.Recursive != nil {
		return *l.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Library.Directories {
		cfg.Library.Directories[i] = expandPath(cfg.Library.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting library directory changes.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
