// Package store defines the historical record store and an in-memory
// implementation. Records are keyed by calendar date.
package store

import (
	"context"
	"fmt"
	"time"

	"wfm-planner/models"
)

// Store persists historical records keyed by calendar date.
type Store interface {
	// Get returns the record for date. ok is false when none exists.
	Get(ctx context.Context, date time.Time) (rec models.HistoricalRecord, ok bool, err error)
	// Dates returns every stored date in ascending order.
	Dates(ctx context.Context) ([]time.Time, error)
	// Put merges patch into the record for date, creating it if needed.
	// Only fields set in the patch are overwritten.
	Put(ctx context.Context, date time.Time, patch models.RecordPatch) error
	// Delete removes the record for date. Missing records are ignored.
	Delete(ctx context.Context, date time.Time) error
	// Clear removes every record.
	Clear(ctx context.Context) error
}

// Lister is implemented by stores that can return every record in one call.
type Lister interface {
	All(ctx context.Context) ([]models.HistoricalRecord, error)
}

// Snapshot reads the whole store into an immutable History.
func Snapshot(ctx context.Context, s Store) (*models.History, error) {
	if l, ok := s.(Lister); ok {
		recs, err := l.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing records: %w", err)
		}
		return models.NewHistory(recs), nil
	}

	dates, err := s.Dates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dates: %w", err)
	}
	recs := make([]models.HistoricalRecord, 0, len(dates))
	for _, d := range dates {
		rec, ok, err := s.Get(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", models.DateKey(d), err)
		}
		if ok {
			recs = append(recs, rec)
		}
	}
	return models.NewHistory(recs), nil
}
