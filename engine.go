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

package simplechat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/pokhrel-dev/simplechat-sub002/ai/gemini"
	"github.com/pokhrel-dev/simplechat-sub002/ai/openai"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/extract"
	"github.com/pokhrel-dev/simplechat-sub002/ingestion"
	"github.com/pokhrel-dev/simplechat-sub002/storage"
	"github.com/pokhrel-dev/simplechat-sub002/storage/badger"
)

// Engine wires storage, a summarization back-end and the ingestion pipeline.
type Engine struct {
	backend    *badger.Backend
	summaries  storage.SummaryRepository
	reports    storage.ReportRepository
	summarizer ai.Summarizer
	pipeline   *ingestion.Pipeline
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig       *ai.Config
	pipelineConfig *ingestion.Config
	summarizer     ai.Summarizer
	inMemory       bool
	disableCache   bool
	poolSize       int
	progress       ingestion.ProgressReporter
	logger         *slog.Logger
}

// WithAIConfig sets the back-end configuration used by NewSummarizer.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithPipelineConfig sets the budget, chunking and retry configuration.
func WithPipelineConfig(config *ingestion.Config) EngineOption {
	return func(o *engineOptions) {
		o.pipelineConfig = config
	}
}

// WithFileConfig applies both sections of a loaded configuration file.
func WithFileConfig(config *FileConfig) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = &config.AI
		o.pipelineConfig = &config.Pipeline
	}
}

// WithSummarizer uses summarizer instead of building one from the AI config.
func WithSummarizer(summarizer ai.Summarizer) EngineOption {
	return func(o *engineOptions) {
		o.summarizer = summarizer
	}
}

// WithInMemory keeps all data in memory. The path passed to NewEngine is ignored.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithoutSummaryCache disables reuse of previously computed chunk summaries.
func WithoutSummaryCache() EngineOption {
	return func(o *engineOptions) {
		o.disableCache = true
	}
}

// WithPoolSize sets how many chunks are summarized concurrently.
func WithPoolSize(size int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = size
	}
}

// WithProgress reports chunk completion to progress.
func WithProgress(progress ingestion.ProgressReporter) EngineOption {
	return func(o *engineOptions) {
		o.progress = progress
	}
}

// WithLogger sets the logger shared by the engine and its pipeline.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewSummarizer builds the back-end selected by config.Provider.
func NewSummarizer(ctx context.Context, config *ai.Config) (ai.Summarizer, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfiguration, err)
	}
	switch config.Provider {
	case ai.ProviderOpenAI:
		return openai.NewSummarizer(config)
	case ai.ProviderGemini:
		return gemini.NewSummarizer(ctx, config)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", core.ErrInvalidConfiguration, config.Provider)
	}
}

// NewEngine opens the database at filePath and prepares a pipeline.
func NewEngine(ctx context.Context, filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:       ai.DefaultConfig(),
		pipelineConfig: ingestion.DefaultConfig(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	summarizer := options.summarizer
	if summarizer == nil {
		var err error
		summarizer, err = NewSummarizer(ctx, options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackendWithLogger(filePath, options.inMemory, options.logger)
	if err != nil {
		return nil, err
	}

	summaries, err := badger.NewSummaryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	reports, err := badger.NewReportRepository(backend)
	if err != nil {
		summaries.Close()
		backend.Close()
		return nil, err
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithConfig(options.pipelineConfig),
		ingestion.WithLogger(options.logger),
		ingestion.WithReportStore(reports),
		ingestion.WithProgress(options.progress),
	}
	if !options.disableCache {
		pipelineOpts = append(pipelineOpts, ingestion.WithSummaryCache(summaries))
	}
	if options.poolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(options.poolSize))
	}

	pipeline, err := ingestion.NewPipeline(summarizer, pipelineOpts...)
	if err != nil {
		reports.Close()
		summaries.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:    backend,
		summaries:  summaries,
		reports:    reports,
		summarizer: summarizer,
		pipeline:   pipeline,
		logger:     options.logger.With("component", "engine"),
	}, nil
}

// Close releases the pipeline and closes storage.
func (e *Engine) Close() error {
	e.pipeline.Release()

	if err := e.reports.Close(); err != nil {
		e.logger.Error("error closing report repository", "err", err)
		return err
	}
	if err := e.summaries.Close(); err != nil {
		e.logger.Error("error closing summary repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// SummarizerName identifies the active back-end.
func (e *Engine) SummarizerName() string {
	return e.summarizer.Name()
}

// Config returns the pipeline configuration in effect.
func (e *Engine) Config() ingestion.Config {
	return e.pipeline.Config()
}

// Process runs the pipeline over unit and stores the report.
func (e *Engine) Process(ctx context.Context, unit core.ContentUnit) (*core.AggregateReport, error) {
	return e.pipeline.Process(ctx, unit)
}

// Ingest extracts locator with extractor and processes the result.
func (e *Engine) Ingest(ctx context.Context, extractor extract.Extractor, locator string) (*core.AggregateReport, error) {
	return e.pipeline.Ingest(ctx, extractor, locator)
}

// SummarizeFile processes the UTF-8 text file at path.
func (e *Engine) SummarizeFile(ctx context.Context, path string) (*core.AggregateReport, error) {
	return e.pipeline.Ingest(ctx, extract.NewFileExtractor(), path)
}

// Plan reports the budget decision for unit and the chunks that would be
// summarized, without calling the back-end.
func (e *Engine) Plan(unit core.ContentUnit) (ingestion.Decision, []core.Chunk, error) {
	return e.pipeline.Plan(unit)
}

// Report loads the latest report for sourceID with its metrics recomputed.
func (e *Engine) Report(ctx context.Context, sourceID string) (*core.AggregateReport, error) {
	report, err := e.reports.GetReport(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	ingestion.RecomputeMetrics(report)
	return report, nil
}

// ListReports returns every stored report ordered by source ID.
func (e *Engine) ListReports(ctx context.Context) ([]*core.AggregateReport, error) {
	reports, err := e.reports.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		ingestion.RecomputeMetrics(r)
	}
	return reports, nil
}

// DeleteReport removes the stored report for sourceID.
func (e *Engine) DeleteReport(ctx context.Context, sourceID string) error {
	return e.reports.DeleteReport(ctx, sourceID)
}

// CachedSummaries returns the number of chunk summaries in the cache.
func (e *Engine) CachedSummaries(ctx context.Context) (int, error) {
	return e.summaries.CountSummaries(ctx)
}

// IsNotFound reports whether err means a report or summary does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
