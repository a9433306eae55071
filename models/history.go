package models

import (
	"sort"
	"time"
)

// History is an immutable, date-ordered snapshot of historical records.
// Iteration order is fixed so that floating point aggregates are
// reproducible across runs.
type History struct {
	byKey   map[string]HistoricalRecord
	records []HistoricalRecord
}

// NewHistory builds a snapshot. Later records win on duplicate dates.
func NewHistory(records []HistoricalRecord) *History {
	h := &History{byKey: make(map[string]HistoricalRecord, len(records))}
	for _, rec := range records {
		rec.Date = Day(rec.Date)
		h.byKey[DateKey(rec.Date)] = rec
	}
	h.records = make([]HistoricalRecord, 0, len(h.byKey))
	for _, rec := range h.byKey {
		h.records = append(h.records, rec)
	}
	sort.Slice(h.records, func(i, j int) bool {
		return h.records[i].Date.Before(h.records[j].Date)
	})
	return h
}

// Get returns the record for the given calendar day.
func (h *History) Get(date time.Time) (HistoricalRecord, bool) {
	if h == nil {
		return HistoricalRecord{}, false
	}
	rec, ok := h.byKey[DateKey(date)]
	return rec, ok
}

// Records returns the records sorted by date. Callers must not modify it.
func (h *History) Records() []HistoricalRecord {
	if h == nil {
		return nil
	}
	return h.records
}

// Len returns the number of records.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.records)
}
