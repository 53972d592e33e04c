package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/extract"
	"github.com/pokhrel-dev/simplechat-sub002/storage"
)

// Pipeline turns extracted content into an AggregateReport. Content within
// budget is returned unchanged; larger content is chunked and each chunk is
// summarized on a bounded worker pool.
type Pipeline struct {
	config     *Config
	backend    ai.Summarizer
	chunker    *Chunker
	summarizer *ChunkSummarizer
	cache      storage.SummaryRepository
	reports    storage.ReportRepository
	pool       *ants.Pool
	progress   ProgressReporter
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConfig sets the pipeline configuration. It is validated by NewPipeline.
func WithConfig(config *Config) Option {
	return func(p *Pipeline) error {
		if config == nil {
			config = DefaultConfig()
		}
		p.config = config
		return nil
	}
}

// WithPoolSize sets the number of chunks summarized concurrently.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
			p.pool = nil
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSummaryCache enables reuse of summaries for identical chunks.
func WithSummaryCache(cache storage.SummaryRepository) Option {
	return func(p *Pipeline) error {
		p.cache = cache
		return nil
	}
}

// WithReportStore saves every completed report under its source ID.
func WithReportStore(reports storage.ReportRepository) Option {
	return func(p *Pipeline) error {
		p.reports = reports
		return nil
	}
}

// WithProgress reports chunk completion to progress.
func WithProgress(progress ProgressReporter) Option {
	return func(p *Pipeline) error {
		p.progress = progress
		return nil
	}
}

// WithClock sets the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// NewPipeline creates a new pipeline around a summarization back-end.
// Configuration problems are reported here, never while processing.
func NewPipeline(summarizer ai.Summarizer, opts ...Option) (*Pipeline, error) {
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		config:  DefaultConfig(),
		backend: summarizer,
		pool:    pool,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if err := p.config.Validate(); err != nil {
		p.Release()
		return nil, err
	}

	p.logger = p.logger.With("component", "pipeline")

	// Create components after options are applied (so they get final config)
	p.chunker, err = NewChunker(p.config.ChunkSize, p.config.LookBack)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.summarizer, err = NewChunkSummarizer(summarizer, p.config, p.cache, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	return p, nil
}

// Config returns the validated pipeline configuration.
func (p *Pipeline) Config() Config {
	return *p.config
}

// Plan evaluates unit against the budget and, when it does not fit, returns
// the chunks that Process would summarize. No back-end calls are made.
func (p *Pipeline) Plan(unit core.ContentUnit) (Decision, []core.Chunk, error) {
	if err := core.ValidateContentUnit(&unit); err != nil {
		return Decision{}, nil, err
	}
	decision, err := Evaluate(unit, p.config.Budget())
	if err != nil {
		return Decision{}, nil, err
	}
	if decision.Fits {
		return decision, nil, nil
	}
	chunks, err := p.chunker.Split(unit.RawText)
	if err != nil {
		return Decision{}, nil, err
	}
	return decision, chunks, nil
}

// Ingest extracts the document at locator and processes it. Extraction
// errors are returned unchanged.
func (p *Pipeline) Ingest(ctx context.Context, extractor extract.Extractor, locator string) (*core.AggregateReport, error) {
	extraction, err := extractor.Extract(ctx, locator)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, core.NewContentUnit(locator, extraction.RawText, extraction.PageCountHint))
}

// Process runs the pipeline for unit and returns the complete report.
//
// Only input validation errors and ErrCancelled are returned; summarization
// failures appear as degraded sections in the report. When ctx ends before
// every chunk is summarized, Process returns ErrCancelled without waiting
// for in-flight back-end calls.
func (p *Pipeline) Process(ctx context.Context, unit core.ContentUnit) (*core.AggregateReport, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run", runID, "source", unit.SourceID)

	decision, chunks, err := p.Plan(unit)
	if err != nil {
		return nil, err
	}

	if decision.Fits {
		logger.Info("content fits budget, no summarization", "chars", unit.CharCount, "budget", p.config.MaxChars)
		report := AssembleDirect(runID, unit, p.config.Budget(), p.now())
		p.save(ctx, report, logger)
		return report, nil
	}

	logger.Info("content exceeds budget, summarizing",
		"chars", unit.CharCount, "budget", p.config.MaxChars,
		"overage_pct", decision.OveragePct, "chunks", len(chunks))

	summaries, err := p.summarizeAll(ctx, chunks, logger)
	if err != nil {
		return nil, err
	}

	report := Assemble(runID, unit, p.config.Budget(), summaries, p.now())
	logger.Info("summarization complete",
		"original_chars", report.TotalOriginalChars, "summary_chars", report.TotalSummaryChars,
		"reduction_pct", report.ReductionPct, "degraded", report.DegradedSections())

	p.save(ctx, report, logger)
	return report, nil
}

// summarizeAll fans chunks out to the pool and collects one summary per
// index. Each result slot is written by exactly one task.
func (p *Pipeline) summarizeAll(ctx context.Context, chunks []core.Chunk, logger *slog.Logger) ([]core.ChunkSummary, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]core.ChunkSummary, len(chunks))
	// Buffered so abandoned tasks never block on send.
	done := make(chan int, len(chunks))

	if p.progress != nil {
		p.progress.Start(len(chunks))
	}

	go func() {
		for i := range chunks {
			if runCtx.Err() != nil {
				return
			}
			chunk := chunks[i]
			task := func() {
				results[chunk.Index] = p.summarizer.Summarize(runCtx, chunk)
				done <- chunk.Index
			}
			if err := p.pool.Submit(task); err != nil {
				logger.Warn("pool rejected chunk, running inline", "chunk", chunk.Index, "err", err)
				task()
			}
		}
	}()

	for collected := 0; collected < len(chunks); collected++ {
		select {
		case <-ctx.Done():
			logger.Warn("run cancelled", "completed", collected, "chunks", len(chunks))
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case idx := <-done:
			logger.Debug("chunk summarized", "chunk", idx, "status", results[idx].Status.String())
			if p.progress != nil {
				p.progress.Increment(1)
			}
		}
	}

	// A cancellation racing the last result still voids the run: some
	// sections may have fallen back only because of it.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	if p.progress != nil {
		p.progress.Finish()
	}
	return results, nil
}

func (p *Pipeline) save(ctx context.Context, report *core.AggregateReport, logger *slog.Logger) {
	if p.reports == nil {
		return
	}
	if err := p.reports.SaveReport(ctx, report); err != nil {
		logger.Warn("failed to store report", "err", err)
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
