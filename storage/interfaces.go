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

package storage

import (
	"context"
	"time"

	"github.com/pokhrel-dev/simplechat-sub002/core"
)

// CachedSummary is a summary produced by a back-end, keyed by the content
// hash of (back-end name, instruction, chunk text).
type CachedSummary struct {
	Key         core.ID
	Backend     string
	SummaryText string
	SourceChars int
	CreatedAt   time.Time
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SummaryRepository caches chunk summaries so identical chunks are not sent
// to the back-end twice.
type SummaryRepository interface {
	Repository

	// GetSummary retrieves a cached summary by key.
	// Returns ErrNotFound if no summary is cached for key.
	GetSummary(ctx context.Context, key core.ID) (*CachedSummary, error)

	// PutSummary stores or replaces a cached summary.
	// Sets CreatedAt if not already set.
	PutSummary(ctx context.Context, summary *CachedSummary) error

	// CountSummaries returns the number of cached summaries.
	CountSummaries(ctx context.Context) (int, error)
}

// ReportRepository stores the latest report per source.
//
// Only counts are persisted. Percentages and estimates on loaded reports are
// zero until recomputed from the counts (see ingestion.RecomputeMetrics).
type ReportRepository interface {
	Repository

	// SaveReport stores report under its SourceID, replacing any previous one.
	SaveReport(ctx context.Context, report *core.AggregateReport) error

	// GetReport retrieves the report for sourceID.
	// Returns ErrNotFound if the source has no report.
	GetReport(ctx context.Context, sourceID string) (*core.AggregateReport, error)

	// ListReports returns all stored reports ordered by source ID.
	ListReports(ctx context.Context) ([]*core.AggregateReport, error)

	// DeleteReport removes the report for sourceID.
	// Returns ErrNotFound if the source has no report.
	DeleteReport(ctx context.Context, sourceID string) error
}
