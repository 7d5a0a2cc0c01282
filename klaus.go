// Package klaus is a client library for multi-turn conversations with the
// Anthropic messages API. The API is stateless, so the library keeps all
// continuity on the client: the conversation package owns message history
// and tool round-trips, the anthropic package holds the wire types and the
// streaming reducer, and this package builds transport-neutral requests and
// ships an optional HTTP shim with bounded retry for rate limiting.
package klaus

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v9"

	"github.com/charmbracelet/klaus/anthropic"
)

const defaultMaxTokens = 1024

// ErrMissingAPIKey is returned when no API key can be found.
var ErrMissingAPIKey = errors.New("klaus: missing api key")

// Config holds the per-API configuration used to build requests. It is a
// plain immutable value: pass it to request-building calls instead of
// relying on ambient state.
type Config struct {
	APIKey    string `yaml:"api-key" env:"ANTHROPIC_API_KEY"`
	Model     string `yaml:"model" env:"KLAUS_MODEL"`
	MaxTokens int    `yaml:"max-tokens" env:"KLAUS_MAX_TOKENS"`
	Host      string `yaml:"host" env:"KLAUS_HOST"`
}

// DefaultConfig returns a Config with defaults for everything but the key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:    apiKey,
		Model:     anthropic.DefaultModel,
		MaxTokens: defaultMaxTokens,
		Host:      anthropic.DefaultHost,
	}
}

// ConfigFromEnv builds a Config from the environment, with the usual
// defaults for anything unset.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig("")
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("klaus: parse env: %w", err)
	}
	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	return cfg, nil
}

func (c Config) model() string {
	if c.Model == "" {
		return anthropic.DefaultModel
	}
	return c.Model
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) host() string {
	if c.Host == "" {
		return anthropic.DefaultHost
	}
	return c.Host
}
