package simplechat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Run("empty uses defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultFileConfig().Pipeline, cfg.Pipeline)
		assert.Equal(t, ai.ProviderOpenAI, cfg.AI.Provider)
	})

	t.Run("partial sections keep defaults", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
database: /var/lib/simplechat
ai:
  provider: Gemini
  model: gemini-2.0-flash
  api_key_env: GEMINI_API_KEY
  request_timeout: 45s
pipeline:
  max_chars: 50000
  retry_base_delay: 2s
`))
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/simplechat", cfg.Database)
		assert.Equal(t, ai.ProviderGemini, cfg.AI.Provider)
		assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
		assert.Equal(t, 45*time.Second, cfg.AI.RequestTimeout)
		assert.Equal(t, 50000, cfg.Pipeline.MaxChars)
		assert.Equal(t, 2*time.Second, cfg.Pipeline.RetryBaseDelay)
		assert.Equal(t, 100000, cfg.Pipeline.ChunkSize)
		assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "pipeline:\n  chunk_sise: 10\n"},
		{"negative budget", "pipeline:\n  max_chars: -1\n"},
		{"look back too large", "pipeline:\n  chunk_size: 10\n  look_back: 10\n"},
		{"zero attempts", "pipeline:\n  max_attempts: 0\n"},
		{"unknown provider", "ai:\n  provider: cohere\n"},
		{"malformed", "pipeline: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simplechat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  chunk_size: 5000\n  look_back: 200\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 200, cfg.Pipeline.LookBack)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
