package badger

import (
	"context"
	"testing"

	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryRepository_PutGet(t *testing.T) {
	summaries, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	key := core.IDFromContent("mock/summarizer\x00instruction\x00chunk text")

	entry := &storage.CachedSummary{
		Key:         key,
		Backend:     "mock/summarizer",
		SummaryText: "short version",
		SourceChars: 10,
	}
	require.NoError(t, summaries.PutSummary(ctx, entry))
	assert.False(t, entry.CreatedAt.IsZero(), "CreatedAt should be set on put")

	got, err := summaries.GetSummary(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "short version", got.SummaryText)
	assert.Equal(t, "mock/summarizer", got.Backend)
	assert.Equal(t, 10, got.SourceChars)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
}

func TestSummaryRepository_NotFound(t *testing.T) {
	summaries, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = summaries.GetSummary(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSummaryRepository_ReplaceAndCount(t *testing.T) {
	summaries, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, summaries.PutSummary(ctx, &storage.CachedSummary{Key: 1, SummaryText: "one"}))
	require.NoError(t, summaries.PutSummary(ctx, &storage.CachedSummary{Key: 2, SummaryText: "two"}))
	require.NoError(t, summaries.PutSummary(ctx, &storage.CachedSummary{Key: 1, SummaryText: "uno"}))

	n, err := summaries.CountSummaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := summaries.GetSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "uno", got.SummaryText)
}

func TestNewSummaryRepository_NilBackend(t *testing.T) {
	_, err := NewSummaryRepository(nil)
	assert.Error(t, err)
}
