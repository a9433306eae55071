package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"wfm-planner/models"
)

// Memory is an in-memory Store for tests and one-off runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string]models.HistoricalRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]models.HistoricalRecord)}
}

func (m *Memory) Get(_ context.Context, date time.Time) (models.HistoricalRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[models.DateKey(date)]
	return rec, ok, nil
}

func (m *Memory) Dates(_ context.Context) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dates := make([]time.Time, 0, len(m.records))
	for _, rec := range m.records {
		dates = append(dates, rec.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (m *Memory) All(_ context.Context) ([]models.HistoricalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := make([]models.HistoricalRecord, 0, len(m.records))
	for _, rec := range m.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
	return recs, nil
}

func (m *Memory) Put(_ context.Context, date time.Time, patch models.RecordPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.DateKey(date)
	rec, ok := m.records[key]
	if !ok {
		rec = models.HistoricalRecord{Date: models.Day(date)}
	}
	m.records[key] = patch.Apply(rec)
	return nil
}

func (m *Memory) Delete(_ context.Context, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, models.DateKey(date))
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]models.HistoricalRecord)
	return nil
}
