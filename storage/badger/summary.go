package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/storage"
)

// SummaryRepository implements storage.SummaryRepository for BadgerDB.
type SummaryRepository struct {
	backend *Backend
}

var _ storage.SummaryRepository = (*SummaryRepository)(nil)

func newSummaryRepository(backend *Backend) *SummaryRepository {
	return &SummaryRepository{backend: backend}
}

// NewSummaryRepository creates a summary cache on backend.
func NewSummaryRepository(backend *Backend) (storage.SummaryRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return newSummaryRepository(backend), nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *SummaryRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SummaryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetSummary retrieves a cached summary by key.
func (r *SummaryRepository) GetSummary(ctx context.Context, key core.ID) (*storage.CachedSummary, error) {
	var result *storage.CachedSummary
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSummaryKey(uint64(key)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalCachedSummary(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PutSummary stores or replaces a cached summary.
func (r *SummaryRepository) PutSummary(ctx context.Context, summary *storage.CachedSummary) error {
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSummaryKey(uint64(summary.Key)), storage.MarshalCachedSummary(summary)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountSummaries returns the number of cached summaries.
func (r *SummaryRepository) CountSummaries(ctx context.Context) (int, error) {
	return r.backend.countPrefix([]byte(summaryCachePrefix))
}
