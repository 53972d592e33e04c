package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/pokhrel-dev/simplechat-sub002/storage"
)

// ReportRepository implements storage.ReportRepository for BadgerDB.
type ReportRepository struct {
	backend *Backend
}

var _ storage.ReportRepository = (*ReportRepository)(nil)

func newReportRepository(backend *Backend) *ReportRepository {
	return &ReportRepository{backend: backend}
}

// NewReportRepository creates a report store on backend.
func NewReportRepository(backend *Backend) (storage.ReportRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return newReportRepository(backend), nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *ReportRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ReportRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveReport stores report under its SourceID, replacing any previous one.
func (r *ReportRepository) SaveReport(ctx context.Context, report *core.AggregateReport) error {
	if report.SourceID == "" {
		return fmt.Errorf("%w: empty source id", storage.ErrInvalidKey)
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeReportKey(report.SourceID), storage.MarshalReport(report)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetReport retrieves the report for sourceID.
func (r *ReportRepository) GetReport(ctx context.Context, sourceID string) (*core.AggregateReport, error) {
	var result *core.AggregateReport
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readReport(tx, makeReportKey(sourceID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListReports returns all stored reports ordered by source ID.
func (r *ReportRepository) ListReports(ctx context.Context) ([]*core.AggregateReport, error) {
	var results []*core.AggregateReport
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(reportPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var report *core.AggregateReport
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				report, unmarshalErr = storage.UnmarshalReport(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			results = append(results, report)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteReport removes the report for sourceID.
func (r *ReportRepository) DeleteReport(ctx context.Context, sourceID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeReportKey(sourceID)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readReport reads a report from the transaction. Returns nil when absent.
func (r *ReportRepository) readReport(tx *badger.Txn, key []byte) (*core.AggregateReport, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var report *core.AggregateReport
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		report, unmarshalErr = storage.UnmarshalReport(val)
		return unmarshalErr
	})
	return report, err
}
