package simplechat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/ingestion"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration.
//
//	database: ./simplechat.db
//	ai:
//	  provider: gemini
//	  model: gemini-2.0-flash
//	  api_key_env: GEMINI_API_KEY
//	pipeline:
//	  max_chars: 225000
//	  chunk_size: 100000
//	  retry_base_delay: 2s
type FileConfig struct {
	// Database is the BadgerDB directory.
	Database string           `yaml:"database"`
	AI       ai.Config        `yaml:"ai"`
	Pipeline ingestion.Config `yaml:"pipeline"`
}

// DefaultFileConfig returns the configuration used when no file is given.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		AI:       *ai.DefaultConfig(),
		Pipeline: *ingestion.DefaultConfig(),
	}
}

// LoadConfig reads a YAML configuration file. Keys absent from the file keep
// their defaults; unknown keys are rejected.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates YAML configuration data.
func ParseConfig(data []byte) (*FileConfig, error) {
	cfg := DefaultFileConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks both configuration sections.
func (c *FileConfig) Validate() error {
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfiguration, err)
	}
	return c.Pipeline.Validate()
}
