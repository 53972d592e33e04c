package ingestion

import "errors"

var (
	// ErrSummarizerRequired is returned when a summarization back-end is not provided.
	ErrSummarizerRequired = errors.New("summarizer required")

	// ErrCancelled is returned when the request ends before every chunk has a summary.
	// It wraps the context error. No partial report accompanies it.
	ErrCancelled = errors.New("pipeline cancelled")

	// ErrInvalidMaxAttempts is returned when a retry policy allows no attempts.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
