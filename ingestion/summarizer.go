package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/storage"
)

// ChunkSummarizer turns one chunk into a ChunkSummary. It retries transient
// back-end failures and degrades to truncation, then to the original text,
// so every call yields a summary. It never modifies the chunk.
type ChunkSummarizer struct {
	summarizer    ai.Summarizer
	cache         storage.SummaryRepository
	instruction   string
	policy        RetryPolicy
	fallbackChars int
	logger        *slog.Logger
}

// NewChunkSummarizer creates a chunk summarizer. cache may be nil.
func NewChunkSummarizer(summarizer ai.Summarizer, config *Config, cache storage.SummaryRepository, logger *slog.Logger) (*ChunkSummarizer, error) {
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("processor", "chunk-summarizer")

	instruction := config.Instruction
	if instruction == "" {
		instruction = ai.DefaultInstruction
	}

	policy := config.RetryPolicy()
	policy.Logger = logger

	return &ChunkSummarizer{
		summarizer:    summarizer,
		cache:         cache,
		instruction:   instruction,
		policy:        policy,
		fallbackChars: config.FallbackChars,
		logger:        logger,
	}, nil
}

// Summarize produces the summary for chunk.
func (s *ChunkSummarizer) Summarize(ctx context.Context, chunk core.Chunk) core.ChunkSummary {
	key := s.cacheKey(chunk.Text)
	if cached, ok := s.lookup(ctx, key); ok {
		return s.result(chunk, cached, core.StatusSummarized, 0, true)
	}

	attempts := 0
	var text string
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		var callErr error
		text, callErr = s.call(ctx, chunk.Text)
		return callErr
	}, s.policy, ai.IsTransient)

	if err != nil {
		s.logger.Warn("summarization failed, using fallback",
			"chunk", chunk.Index, "attempts", attempts, "transient", ai.IsTransient(err), "err", err)
		return s.fallback(chunk, attempts)
	}

	s.store(ctx, key, chunk, text)
	return s.result(chunk, text, core.StatusSummarized, attempts, false)
}

// call invokes the back-end once. Unclassified errors, empty output and
// panics are reported as permanent.
func (s *ChunkSummarizer) call(ctx context.Context, text string) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ai.Permanent(fmt.Errorf("summarizer panic: %v", r))
		}
	}()

	resp, err := s.summarizer.Summarize(ctx, ai.SummaryRequest{Text: text, Instruction: s.instruction})
	if err != nil {
		return "", ai.Classify(err)
	}
	if strings.TrimSpace(resp.SummaryText) == "" {
		return "", ai.Permanent(ai.ErrEmptySummary)
	}
	return resp.SummaryText, nil
}

// fallback degrades to truncation, or to the original text when truncation
// is not possible.
func (s *ChunkSummarizer) fallback(chunk core.Chunk, attempts int) core.ChunkSummary {
	if s.fallbackChars > 0 {
		if truncated := Truncate(chunk.Text, s.fallbackChars); truncated != "" {
			return s.result(chunk, truncated, core.StatusFallbackTruncated, attempts, false)
		}
	}
	return s.result(chunk, chunk.Text, core.StatusFallbackOriginal, attempts, false)
}

func (s *ChunkSummarizer) result(chunk core.Chunk, text string, status core.SummaryStatus, attempts int, cached bool) core.ChunkSummary {
	summary := core.ChunkSummary{
		ChunkIndex:        chunk.Index,
		OriginalCharCount: chunk.CharCount,
		SummaryText:       text,
		SummaryCharCount:  core.CountChars(text),
		Status:            status,
		Attempts:          attempts,
		Cached:            cached,
	}
	_, summary.NeedsReview = SectionMetrics(summary)
	return summary
}

// cacheKey identifies a summary by back-end, instruction and chunk text.
func (s *ChunkSummarizer) cacheKey(text string) core.ID {
	return core.IDFromContent(s.summarizer.Name() + "\x00" + s.instruction + "\x00" + text)
}

func (s *ChunkSummarizer) lookup(ctx context.Context, key core.ID) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	cached, err := s.cache.GetSummary(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("summary cache read failed", "err", err)
		}
		return "", false
	}
	if strings.TrimSpace(cached.SummaryText) == "" {
		return "", false
	}
	return cached.SummaryText, true
}

func (s *ChunkSummarizer) store(ctx context.Context, key core.ID, chunk core.Chunk, text string) {
	if s.cache == nil {
		return
	}
	err := s.cache.PutSummary(ctx, &storage.CachedSummary{
		Key:         key,
		Backend:     s.summarizer.Name(),
		SummaryText: text,
		SourceChars: chunk.CharCount,
	})
	if err != nil {
		s.logger.Warn("summary cache write failed", "chunk", chunk.Index, "err", err)
	}
}

// Truncate shortens text to at most limit characters. When the text is
// longer, the cut moves back to the last whitespace within the final tenth
// of the limit, and trailing whitespace is dropped. Returns "" when limit
// is not positive.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := limit
	for i := limit; i >= limit-limit/10 && i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
}
