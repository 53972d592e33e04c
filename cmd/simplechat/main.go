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

package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	simplechat "github.com/pokhrel-dev/simplechat-sub002"
	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/extract"
	"github.com/pokhrel-dev/simplechat-sub002/ingestion"
	"github.com/pokhrel-dev/simplechat-sub002/storage"
	"github.com/pokhrel-dev/simplechat-sub002/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory (overrides the config file)",
	}
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML configuration file",
	}
	pipelineFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "max-chars",
			Usage: "Processing budget in characters",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Target chunk size in characters",
		},
		&cli.IntFlag{
			Name:  "look-back",
			Usage: "Distance searched backwards for a natural break",
		},
	}

	summarizeFlags := append([]cli.Flag{
		dbFlag,
		configFlag,
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Summarization back-end (openai, gemini)",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Base URL of an OpenAI-compatible API",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Model name",
		},
		&cli.StringFlag{
			Name:  "api-key-env",
			Usage: "Environment variable holding the API key",
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Back-end calls per chunk before falling back",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Chunks summarized concurrently (default: number of CPUs)",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Do not reuse previously computed chunk summaries",
		},
		&cli.StringFlag{
			Name:  "source-id",
			Usage: "Identifier stored with the report (default: the file path)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress progress output",
		},
	}, pipelineFlags...)

	return &cli.App{
		Name:  "simplechat",
		Usage: "Summarize documents that exceed a processing budget",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Usage:     "Process a UTF-8 text file and print its report",
				ArgsUsage: "<file>",
				Action:    summarizeCommand,
				Flags:     summarizeFlags,
			},
			{
				Name:      "evaluate",
				Usage:     "Show the budget decision and chunk plan without calling a model",
				ArgsUsage: "<file>",
				Action:    evaluateCommand,
				Flags:     append([]cli.Flag{configFlag}, pipelineFlags...),
			},
			{
				Name:      "report",
				Usage:     "Print the stored report for a source",
				ArgsUsage: "<source-id>",
				Action:    reportCommand,
				Flags:     []cli.Flag{dbFlag, configFlag},
			},
			{
				Name:   "reports",
				Usage:  "List stored reports",
				Action: reportsCommand,
				Flags:  []cli.Flag{dbFlag, configFlag},
			},
			{
				Name:      "delete",
				Usage:     "Delete the stored report for a source",
				ArgsUsage: "<source-id>",
				Action:    deleteCommand,
				Flags:     []cli.Flag{dbFlag, configFlag},
			},
		},
	}
}

// loadConfig reads --config when given and applies flag overrides.
func loadConfig(c *cli.Context) (*simplechat.FileConfig, error) {
	cfg := simplechat.DefaultFileConfig()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = simplechat.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if c.IsSet("db") {
		cfg.Database = c.String("db")
	}
	if c.IsSet("provider") {
		cfg.AI.Provider = ai.Provider(c.String("provider"))
	}
	if c.IsSet("host") {
		cfg.AI.Host = c.String("host")
	}
	if c.IsSet("model") {
		cfg.AI.Model = c.String("model")
	}
	if c.IsSet("api-key-env") {
		cfg.AI.APIKeyEnv = c.String("api-key-env")
	}
	if c.IsSet("max-chars") {
		cfg.Pipeline.MaxChars = c.Int("max-chars")
	}
	if c.IsSet("chunk-size") {
		cfg.Pipeline.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("look-back") {
		cfg.Pipeline.LookBack = c.Int("look-back")
	}
	if c.IsSet("max-attempts") {
		cfg.Pipeline.MaxAttempts = c.Int("max-attempts")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func fileArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument", name)
	}
	return c.Args().First(), nil
}

func summarizeCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := fileArg(c, "file")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Database == "" {
		return fmt.Errorf("database path is required (--db or 'database' in the config file)")
	}

	opts := []simplechat.EngineOption{
		simplechat.WithFileConfig(cfg),
		simplechat.WithPoolSize(c.Int("workers")),
	}
	if c.Bool("no-cache") {
		opts = append(opts, simplechat.WithoutSummaryCache())
	}
	if !c.Bool("quiet") {
		opts = append(opts, simplechat.WithProgress(ingestion.NewProgressTracker(c.App.ErrWriter, 1)))
	}

	engine, err := simplechat.NewEngine(ctx, cfg.Database, opts...)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	extraction, err := extract.NewFileExtractor().Extract(ctx, path)
	if err != nil {
		return err
	}
	sourceID := c.String("source-id")
	if sourceID == "" {
		sourceID = path
	}

	if !c.Bool("quiet") {
		fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database)
		fmt.Fprintf(c.App.ErrWriter, "Summarizer: %s\n", engine.SummarizerName())
		fmt.Fprintln(c.App.ErrWriter)
	}

	report, err := engine.Process(ctx, core.NewContentUnit(sourceID, extraction.RawText, extraction.PageCountHint))
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}
	return ingestion.Render(c.App.Writer, report)
}

func evaluateCommand(c *cli.Context) error {
	path, err := fileArg(c, "file")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	extraction, err := extract.NewFileExtractor().Extract(c.Context, path)
	if err != nil {
		return err
	}
	unit := core.NewContentUnit(path, extraction.RawText, extraction.PageCountHint)
	budget := cfg.Pipeline.Budget()

	decision, err := ingestion.Evaluate(unit, budget)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Source: %s\n", path)
	fmt.Fprintf(w, "Characters: %s (budget %s)\n", humanize.Comma(int64(unit.CharCount)), humanize.Comma(int64(budget.MaxChars)))
	fmt.Fprintf(w, "Tokens (est.): %s\n", humanize.Comma(int64(ingestion.EstimateTokens(unit.CharCount, budget.CharsPerToken))))
	fmt.Fprintf(w, "Pages (est.): %s\n", humanize.Comma(int64(ingestion.EstimatePages(unit.CharCount, budget.CharsPerPage))))
	if decision.Fits {
		fmt.Fprintln(w, "Decision: fits budget, no summarization needed")
		return nil
	}
	fmt.Fprintf(w, "Decision: exceeds budget by %.1f%%, summarization required\n", decision.OveragePct)

	chunker, err := ingestion.NewChunker(cfg.Pipeline.ChunkSize, cfg.Pipeline.LookBack)
	if err != nil {
		return err
	}
	chunks, err := chunker.Split(unit.RawText)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Chunks: %d\n", len(chunks))
	for _, chunk := range chunks {
		fmt.Fprintf(w, "  %d: [%s, %s) %s chars\n", chunk.Index+1,
			humanize.Comma(int64(chunk.StartOffset)), humanize.Comma(int64(chunk.EndOffset)),
			humanize.Comma(int64(chunk.CharCount)))
	}
	return nil
}

// openReports opens the report store without building a summarizer.
func openReports(c *cli.Context) (storage.ReportRepository, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database == "" {
		return nil, nil, fmt.Errorf("database path is required (--db or 'database' in the config file)")
	}

	backend, err := badger.OpenBackend(cfg.Database, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	repo, err := badger.NewReportRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create repository: %w", err)
	}
	return repo, func() {
		repo.Close()
		backend.Close()
	}, nil
}

func reportCommand(c *cli.Context) error {
	sourceID, err := fileArg(c, "source-id")
	if err != nil {
		return err
	}
	repo, closeFn, err := openReports(c)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := repo.GetReport(c.Context, sourceID)
	if err != nil {
		if simplechat.IsNotFound(err) {
			return fmt.Errorf("no report stored for %q", sourceID)
		}
		return err
	}
	ingestion.RecomputeMetrics(report)
	return ingestion.Render(c.App.Writer, report)
}

func reportsCommand(c *cli.Context) error {
	repo, closeFn, err := openReports(c)
	if err != nil {
		return err
	}
	defer closeFn()

	reports, err := repo.ListReports(c.Context)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(c.App.Writer, "No reports stored.")
		return nil
	}
	for _, r := range reports {
		ingestion.RecomputeMetrics(r)
		writeSummaryLine(c.App.Writer, r)
	}
	return nil
}

func writeSummaryLine(w io.Writer, r *core.AggregateReport) {
	fmt.Fprintf(w, "%s\t%s\t%s -> %s chars\t%.1f%% reduction\t%d degraded\t%s\n",
		r.SourceID, r.Method,
		humanize.Comma(int64(r.TotalOriginalChars)), humanize.Comma(int64(r.TotalSummaryChars)),
		r.ReductionPct, r.DegradedSections(), humanize.Time(r.CreatedAt))
}

func deleteCommand(c *cli.Context) error {
	sourceID, err := fileArg(c, "source-id")
	if err != nil {
		return err
	}
	repo, closeFn, err := openReports(c)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := repo.DeleteReport(c.Context, sourceID); err != nil {
		if simplechat.IsNotFound(err) {
			return fmt.Errorf("no report stored for %q", sourceID)
		}
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted report for %s\n", sourceID)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
