package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"

	"github.com/charmbracelet/klaus"
	"github.com/charmbracelet/klaus/internal/mcp"
)

// Settings is the CLI configuration: the YAML file is read first, then the
// environment on top of it.
type Settings struct {
	API         klaus.Config `yaml:"api"`
	System      string       `yaml:"system" env:"KLAUS_SYSTEM"`
	NoStream    bool         `yaml:"no-stream" env:"KLAUS_NO_STREAM"`
	CachePath   string       `yaml:"cache-path" env:"KLAUS_CACHE_PATH"`
	BraveAPIKey string       `yaml:"brave-api-key" env:"BRAVE_API_KEY"`
	MCPServers  mcp.Servers  `yaml:"mcp-servers"`
	Debug       bool         `yaml:"debug" env:"KLAUS_DEBUG"`
}

func settingsPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("klaus", "klaus.yml"))
	if err != nil {
		return "", fmt.Errorf("could not resolve settings path: %w", err)
	}
	return path, nil
}

func loadSettings() (Settings, error) {
	var s Settings

	path, err := settingsPath()
	if err != nil {
		return s, err
	}
	content, err := os.ReadFile(path) //nolint:gosec
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return s, fmt.Errorf("could not read settings: %w", err)
	}
	if len(content) > 0 {
		if err := yaml.Unmarshal(content, &s); err != nil {
			return s, fmt.Errorf("could not parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("could not parse environment: %w", err)
	}

	if s.CachePath == "" {
		s.CachePath = filepath.Join(xdg.DataHome, "klaus")
	}
	if s.API.APIKey == "" {
		return s, klaus.ErrMissingAPIKey
	}
	return s, nil
}
