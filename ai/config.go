// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider selects the summarization back-end.
type Provider string

const (
	// ProviderOpenAI targets OpenAI-compatible chat APIs.
	ProviderOpenAI Provider = "openai"
	// ProviderGemini targets Google Gemini.
	ProviderGemini Provider = "gemini"
)

// Config holds configuration for summarization back-ends.
type Config struct {
	// Provider selects the back-end implementation.
	// Default: "openai"
	Provider Provider `yaml:"provider"`

	// Host is the base URL for OpenAI-compatible APIs. Ignored by Gemini.
	// Example: "http://localhost:11434/v1" for a local Ollama server
	Host string `yaml:"host"`

	// Model is the model identifier used for summarization.
	// Example: "qwen2.5:3b", "gpt-4o-mini", "gemini-2.0-flash"
	Model string `yaml:"model"`

	// APIKey is the credential sent to the back-end. When empty, APIKeyEnv is consulted.
	APIKey string `yaml:"api_key"`

	// APIKeyEnv names the environment variable holding the API key.
	// Default: "OPENAI_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// Temperature controls sampling. Summaries favour low values.
	// Default: 0.2
	Temperature float64 `yaml:"temperature"`

	// MaxOutputTokens caps the length of each summary. 0 leaves it to the back-end.
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// RequestTimeout bounds a single summarization call.
	// Default: 2m
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the back-end.
func WithProvider(provider Provider) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithHost sets the OpenAI-compatible base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key directly.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithAPIKeyEnv sets the environment variable consulted for the API key.
func WithAPIKeyEnv(name string) ConfigOption {
	return func(c *Config) {
		c.APIKeyEnv = name
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithMaxOutputTokens caps the summary length in tokens.
func WithMaxOutputTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxOutputTokens = n
	}
}

// WithRequestTimeout bounds each summarization call.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		Host:           "http://localhost:11434/v1",
		Model:          "qwen2.5:3b",
		APIKeyEnv:      "OPENAI_API_KEY",
		Temperature:    0.2,
		RequestTimeout: 2 * time.Minute,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderGemini),
//	    WithModel("gemini-2.0-flash"),
//	    WithAPIKeyEnv("GEMINI_API_KEY"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// The provider name is lowercased and, for OpenAI-compatible APIs, the /v1
// suffix is added to the host if missing.
func (c *Config) Normalize() {
	c.Provider = Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Provider == ProviderOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.Host == "" {
			return errors.New("ai config: Host is required for the openai provider")
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("ai config: unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.MaxOutputTokens < 0 {
		return errors.New("ai config: MaxOutputTokens cannot be negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("ai config: RequestTimeout cannot be negative")
	}
	return nil
}

// ResolveAPIKey returns the configured key, falling back to APIKeyEnv.
// Local OpenAI-compatible servers accept any token, so "none" is used when
// nothing is configured for that provider.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		if key := os.Getenv(c.APIKeyEnv); key != "" {
			return key
		}
	}
	if c.Provider == ProviderOpenAI {
		return "none"
	}
	return ""
}
