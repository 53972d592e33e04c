// Package extract defines the extraction collaborator that turns a document
// locator into raw text, plus a plain-text file implementation.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("content is not valid UTF-8")

// Extraction is the output of a single extraction.
type Extraction struct {
	// RawText is the full extracted text.
	RawText string

	// PageCountHint is the page count reported by the source format, or 0 when unknown.
	PageCountHint int
}

// Extractor converts a locator (path, URL, upload handle) into raw text.
// Implementations must be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, locator string) (Extraction, error)
}

// FileExtractor reads UTF-8 text files from the local file system.
// Form feeds are treated as page breaks for the page hint.
type FileExtractor struct{}

var _ Extractor = FileExtractor{}

// NewFileExtractor creates a file extractor.
func NewFileExtractor() FileExtractor {
	return FileExtractor{}
}

// Extract reads the file at path.
func (FileExtractor) Extract(ctx context.Context, path string) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return Extraction{}, fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}

	text := string(data)
	return Extraction{
		RawText:       text,
		PageCountHint: PageHint(text),
	}, nil
}

// PageHint counts form-feed separated pages. Empty text has no pages.
func PageHint(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\f") + 1
}

// StaticExtractor returns fixed content for every locator. Useful for
// callers that already hold the text in memory.
type StaticExtractor struct {
	Extraction Extraction
	Err        error
}

// Extract returns the configured extraction or error.
func (s StaticExtractor) Extract(ctx context.Context, locator string) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}
	return s.Extraction, s.Err
}
