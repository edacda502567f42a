// Package config resolves where the database file lives.
//
// Resolution order (first match wins):
//  1. --db flag
//  2. $INVCTL_DB
//  3. the database.path key of the config file
//  4. the default, ./invctl.db
//
// Config file locations (priority order):
//  1. --config flag
//  2. $INVCTL_CONFIG
//  3. ./invctl.yaml
//  4. ~/.config/invctl/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultDatabasePath is used when nothing else names a database.
const DefaultDatabasePath = "invctl.db"

// Config mirrors the YAML config file.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = findConfigPath()
	}
	if path == "" {
		return &Config{}, nil
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func findConfigPath() string {
	if p := os.Getenv("INVCTL_CONFIG"); p != "" {
		return p
	}
	candidates := []string{"invctl.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "invctl", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DatabasePath resolves the database file path from the flag value, the
// environment, the config file and the default, in that order. Resolved
// once at process start; the core never hardcodes it.
func DatabasePath(flagValue, configPath string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p := os.Getenv("INVCTL_DB"); p != "" {
		return p, nil
	}
	cfg, err := Load(configPath)
	if err != nil {
		return "", err
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path, nil
	}
	return DefaultDatabasePath, nil
}
