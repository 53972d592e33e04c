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

package core

import (
	"encoding/binary"
	"time"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used for cache keys and source identities.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CountChars returns the number of characters (Unicode code points) in text.
// Every count and offset in the pipeline is expressed in these units.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// ContentUnit is a single extracted document. It is produced once by the
// extraction collaborator and never modified afterwards.
type ContentUnit struct {
	SourceID      string
	RawText       string
	CharCount     int // canonical size for all budget decisions
	PageCountHint int // page count reported by the extractor, 0 when unknown
}

// NewContentUnit builds a ContentUnit, deriving CharCount from the text.
func NewContentUnit(sourceID, rawText string, pageCountHint int) ContentUnit {
	return ContentUnit{
		SourceID:      sourceID,
		RawText:       rawText,
		CharCount:     CountChars(rawText),
		PageCountHint: pageCountHint,
	}
}

// ProcessingBudget bounds how much content the downstream consumer accepts
// in one response and how counts are translated into tokens and pages.
type ProcessingBudget struct {
	MaxChars      int
	CharsPerToken float64
	CharsPerPage  float64
}

// DefaultBudget returns the budget used when none is configured.
func DefaultBudget() ProcessingBudget {
	return ProcessingBudget{
		MaxChars:      225000,
		CharsPerToken: 4,
		CharsPerPage:  3000,
	}
}

// Chunk is a contiguous slice of a ContentUnit's text. Offsets are character
// offsets into the original text; EndOffset is exclusive.
type Chunk struct {
	Index       int
	StartOffset int
	EndOffset   int
	Text        string
	CharCount   int
}

// SummaryStatus records how a ChunkSummary was produced.
type SummaryStatus int

const (
	// StatusSummarized means the summarization back-end produced the text.
	StatusSummarized SummaryStatus = iota + 1
	// StatusFallbackTruncated means the chunk was truncated after summarization failed.
	StatusFallbackTruncated
	// StatusFallbackOriginal means the original chunk text was kept verbatim.
	StatusFallbackOriginal
)

// String returns the status name used in logs and reports.
func (s SummaryStatus) String() string {
	switch s {
	case StatusSummarized:
		return "summarized"
	case StatusFallbackTruncated:
		return "fallback-truncated"
	case StatusFallbackOriginal:
		return "fallback-original"
	default:
		return "unknown"
	}
}

// Degraded reports whether the status is one of the non-AI fallbacks.
func (s SummaryStatus) Degraded() bool {
	return s == StatusFallbackTruncated || s == StatusFallbackOriginal
}

// ChunkSummary is the outcome of summarizing one Chunk.
type ChunkSummary struct {
	ChunkIndex        int
	OriginalCharCount int
	SummaryText       string
	SummaryCharCount  int
	Status            SummaryStatus
	Attempts          int  // back-end calls made for this chunk
	NeedsReview       bool // summary came out larger than its source
	Cached            bool // served from the summary cache
}

// ProcessingMethod identifies which path the pipeline took.
type ProcessingMethod string

const (
	// MethodDirect means the content fit the budget and was returned unchanged.
	MethodDirect ProcessingMethod = "direct"
	// MethodChunkedSummarized means the content was chunked and summarized.
	MethodChunkedSummarized ProcessingMethod = "chunked-summarized"
)

// AggregateReport is the terminal artifact of one pipeline invocation.
// Percentages and estimates are derived from the counts; they are recomputed
// whenever a report is rebuilt from storage.
type AggregateReport struct {
	RunID         string
	SourceID      string
	Method        ProcessingMethod
	Budget        ProcessingBudget
	Exceeded      bool
	PageCountHint int

	TotalOriginalChars int
	TotalSummaryChars  int

	ReductionPct            float64
	OveragePct              float64
	OriginalPageEstimate    int
	SummarizedPageEstimate  int
	OriginalTokenEstimate   int
	SummarizedTokenEstimate int

	Sections     []ChunkSummary // ascending ChunkIndex
	OriginalText string         // set only for MethodDirect
	CreatedAt    time.Time
}

// Summarized reports whether summarization took place.
func (r *AggregateReport) Summarized() bool {
	return r.Method == MethodChunkedSummarized
}

// DegradedSections returns the number of sections produced by a fallback.
func (r *AggregateReport) DegradedSections() int {
	n := 0
	for _, s := range r.Sections {
		if s.Status.Degraded() {
			n++
		}
	}
	return n
}

// Content returns the report body without the metrics header: the original
// text on the direct path, otherwise the section texts in index order.
func (r *AggregateReport) Content() string {
	if r.Method == MethodDirect {
		return r.OriginalText
	}
	size := 0
	for _, s := range r.Sections {
		size += len(s.SummaryText) + 2
	}
	buf := make([]byte, 0, size)
	for i, s := range r.Sections {
		if i > 0 {
			buf = append(buf, '\n', '\n')
		}
		buf = append(buf, s.SummaryText...)
	}
	return string(buf)
}
