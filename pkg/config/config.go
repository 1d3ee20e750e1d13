// Package config resolves mcpkit's AI-provider configuration from CLI
// flags, environment variables, and the per-user config file, in that
// precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration at ~/.mcpkit/config.yaml.
type File struct {
	// Model is the default model spec, e.g. "openai/gpt-4o".
	Model string `yaml:"model"`

	// APIKeys maps provider family to API key.
	APIKeys map[string]string `yaml:"api_keys"`
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mcpkit", "config.yaml"), nil
}

// LoadFile reads the config file at path. If path is empty the default
// location is used. A missing file yields an empty config.
func LoadFile(path string) (*File, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg File
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
