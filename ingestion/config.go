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

package ingestion

import (
	"fmt"
	"time"

	"github.com/pokhrel-dev/simplechat-sub002/core"
)

// Config holds pipeline settings: the processing budget, chunking geometry,
// retry policy and fallback size.
type Config struct {
	// MaxChars is the budget in characters.
	// Default: 225000
	MaxChars int `yaml:"max_chars"`

	// CharsPerToken converts characters to a token estimate.
	// Default: 4
	CharsPerToken float64 `yaml:"chars_per_token"`

	// CharsPerPage converts characters to a page estimate.
	// Default: 3000
	CharsPerPage float64 `yaml:"chars_per_page"`

	// ChunkSize is the target chunk size in characters. Independent of MaxChars.
	// Default: 100000
	ChunkSize int `yaml:"chunk_size"`

	// LookBack bounds how far before a window end the chunker searches for a break.
	// A trailing remainder shorter than LookBack joins the last chunk.
	// Default: 2000
	LookBack int `yaml:"look_back"`

	// MaxAttempts is the number of back-end calls per chunk, including the first.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// RetryBaseDelay is the delay before the first retry. It doubles on each retry.
	// Default: 1s
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// RetryMaxDelay caps the backoff delay. 0 means uncapped.
	// Default: 30s
	RetryMaxDelay time.Duration `yaml:"retry_max_delay"`

	// FallbackChars is the truncation length used when summarization fails.
	// 0 keeps the original chunk text instead.
	// Default: 4000
	FallbackChars int `yaml:"fallback_chars"`

	// Instruction overrides the summarization instruction. Empty uses ai.DefaultInstruction.
	Instruction string `yaml:"instruction"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBudget sets the budget fields from a ProcessingBudget.
func WithBudget(budget core.ProcessingBudget) ConfigOption {
	return func(c *Config) {
		c.MaxChars = budget.MaxChars
		c.CharsPerToken = budget.CharsPerToken
		c.CharsPerPage = budget.CharsPerPage
	}
}

// WithMaxChars sets the character budget.
func WithMaxChars(n int) ConfigOption {
	return func(c *Config) {
		c.MaxChars = n
	}
}

// WithChunkSize sets the target chunk size.
func WithChunkSize(n int) ConfigOption {
	return func(c *Config) {
		c.ChunkSize = n
	}
}

// WithLookBack sets the break search distance.
func WithLookBack(n int) ConfigOption {
	return func(c *Config) {
		c.LookBack = n
	}
}

// WithMaxAttempts sets the number of back-end calls per chunk.
func WithMaxAttempts(n int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithRetryDelays sets the base and maximum backoff delays.
func WithRetryDelays(base, max time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryBaseDelay = base
		c.RetryMaxDelay = max
	}
}

// WithFallbackChars sets the truncation length for failed chunks.
func WithFallbackChars(n int) ConfigOption {
	return func(c *Config) {
		c.FallbackChars = n
	}
}

// WithInstruction overrides the summarization instruction.
func WithInstruction(instruction string) ConfigOption {
	return func(c *Config) {
		c.Instruction = instruction
	}
}

// DefaultConfig returns a Config with the default budget and chunking geometry.
func DefaultConfig() *Config {
	budget := core.DefaultBudget()
	return &Config{
		MaxChars:       budget.MaxChars,
		CharsPerToken:  budget.CharsPerToken,
		CharsPerPage:   budget.CharsPerPage,
		ChunkSize:      100000,
		LookBack:       2000,
		MaxAttempts:    3,
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  30 * time.Second,
		FallbackChars:  4000,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Budget returns the processing budget portion of the configuration.
func (c *Config) Budget() core.ProcessingBudget {
	return core.ProcessingBudget{
		MaxChars:      c.MaxChars,
		CharsPerToken: c.CharsPerToken,
		CharsPerPage:  c.CharsPerPage,
	}
}

// RetryPolicy returns the retry portion of the configuration.
func (c *Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   c.RetryBaseDelay,
		MaxDelay:    c.RetryMaxDelay,
	}
}

// Validate checks that the configuration is usable. All failures wrap
// core.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if err := core.ValidateBudget(c.Budget()); err != nil {
		return err
	}
	if err := validateChunking(c.ChunkSize, c.LookBack); err != nil {
		return err
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive, got %d", core.ErrInvalidConfiguration, c.MaxAttempts)
	}
	if c.RetryBaseDelay < 0 || c.RetryMaxDelay < 0 {
		return fmt.Errorf("%w: retry delays cannot be negative", core.ErrInvalidConfiguration)
	}
	if c.RetryMaxDelay > 0 && c.RetryMaxDelay < c.RetryBaseDelay {
		return fmt.Errorf("%w: retry max delay %s is below base delay %s", core.ErrInvalidConfiguration, c.RetryMaxDelay, c.RetryBaseDelay)
	}
	if c.FallbackChars < 0 {
		return fmt.Errorf("%w: fallback chars cannot be negative, got %d", core.ErrInvalidConfiguration, c.FallbackChars)
	}
	return nil
}

func validateChunking(size, lookBack int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrInvalidConfiguration, size)
	}
	if lookBack < 0 || lookBack >= size {
		return fmt.Errorf("%w: look-back must be in [0, %d), got %d", core.ErrInvalidConfiguration, size, lookBack)
	}
	return nil
}
