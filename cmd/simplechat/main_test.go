package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// run executes the CLI and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"simplechat", "--log-level", "error"}, args...))
	return stdout.String(), err
}

func writeTextFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEvaluateCommand(t *testing.T) {
	t.Run("fits budget", func(t *testing.T) {
		path := writeTextFile(t, "short document")
		out, err := run(t, "evaluate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Characters: 14 (budget 225,000)")
		assert.Contains(t, out, "fits budget, no summarization needed")
	})

	t.Run("exceeds budget", func(t *testing.T) {
		path := writeTextFile(t, strings.Repeat("x", 120))
		out, err := run(t, "evaluate", "--max-chars", "100", "--chunk-size", "50", "--look-back", "0", path)
		require.NoError(t, err)
		assert.Contains(t, out, "exceeds budget by 20.0%")
		assert.Contains(t, out, "Chunks: 3")
		assert.Contains(t, out, "3: [100, 120) 20 chars")
	})

	t.Run("invalid override", func(t *testing.T) {
		path := writeTextFile(t, "text")
		_, err := run(t, "evaluate", "--max-chars", "0", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("requires a file", func(t *testing.T) {
		_, err := run(t, "evaluate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected exactly one file argument")
	})
}

func TestSummarizeAndReportCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "db")
	path := writeTextFile(t, "A document that fits the budget.")

	out, err := run(t, "summarize", "--db", db, "--quiet", "--source-id", "doc-1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no summarization occurred")
	assert.True(t, strings.HasSuffix(out, "A document that fits the budget."))

	stored, err := run(t, "report", "--db", db, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, out, stored)

	list, err := run(t, "reports", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, list, "doc-1\tdirect\t32 -> 32 chars")

	out, err = run(t, "delete", "--db", db, "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted report for doc-1")

	_, err = run(t, "report", "--db", db, "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no report stored for "doc-1"`)

	list, err = run(t, "reports", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, list, "No reports stored.")
}

func TestSummarizeCommand_Errors(t *testing.T) {
	path := writeTextFile(t, "text")

	_, err := run(t, "summarize", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")

	_, err = run(t, "summarize", "--db", t.TempDir(), "--provider", "cohere", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = run(t, "summarize", "--db", t.TempDir(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "db")
	cfgPath := filepath.Join(t.TempDir(), "simplechat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\npipeline:\n  max_chars: 10\n  chunk_size: 8\n  look_back: 2\n"), 0644))

	path := writeTextFile(t, strings.Repeat("y", 12))
	out, err := run(t, "evaluate", "--config", cfgPath, path)
	require.NoError(t, err)
	assert.Contains(t, out, "exceeds budget by 20.0%")

	out, err = run(t, "evaluate", "--config", cfgPath, "--max-chars", "50", path)
	require.NoError(t, err)
	assert.Contains(t, out, "fits budget")

	list, err := run(t, "reports", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, list, "No reports stored.")
}

func TestSetupLogger(t *testing.T) {
	newLoggerApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "warn",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"INFO", slog.LevelInfo},
			{"Warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newLoggerApp().Run([]string{"test", "-l", tc.input})
				require.NoError(t, err)
				assert.True(t, slog.Default().Enabled(t.Context(), tc.expected))
				assert.False(t, slog.Default().Enabled(t.Context(), tc.expected-1))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newLoggerApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
