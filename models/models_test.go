package models_test

import (
	"testing"
	"time"

	customerrors "wfm-planner/errors"
	"wfm-planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := models.ParseDateKey(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolvedAHT(t *testing.T) {
	tests := map[string]struct {
		record   models.HistoricalRecord
		expected float64
	}{
		"ExplicitAHT":        {record: models.HistoricalRecord{Calls: 1000, AHT: 240, TalkTime: 100}, expected: 240},
		"FromTalkTime":       {record: models.HistoricalRecord{Calls: 1800, TalkTime: 150}, expected: 300},
		"TalkTimeNoCalls":    {record: models.HistoricalRecord{TalkTime: 150}, expected: 0},
		"Nothing":            {record: models.HistoricalRecord{Calls: 1000}, expected: 0},
		"NegativeAHTIgnored": {record: models.HistoricalRecord{Calls: 1000, AHT: -5, TalkTime: 50}, expected: 180},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, tc.record.ResolvedAHT(), 1e-9)
		})
	}
}

func TestRecordPatch(t *testing.T) {
	calls, sl := 1200, 88.5
	patch := models.RecordPatch{Calls: &calls, SL: &sl}
	assert.False(t, patch.Empty())
	assert.True(t, models.RecordPatch{}.Empty())

	got := patch.Apply(models.HistoricalRecord{Calls: 900, Agents: 20, AHT: 310})
	assert.Equal(t, models.HistoricalRecord{Calls: 1200, Agents: 20, AHT: 310, SL: 88.5}, got)
}

func TestDateKey(t *testing.T) {
	ist := time.FixedZone("IST", 3*3600)
	late := time.Date(2025, 3, 3, 23, 30, 0, 0, ist)

	assert.Equal(t, "2025-03-03", models.DateKey(late))
	assert.Equal(t, time.Monday, models.Day(late).Weekday())

	_, err := models.ParseDateKey("03.03.2025")
	assert.ErrorIs(t, err, customerrors.ErrInvalidDateKey)
}

func TestDateRange(t *testing.T) {
	r := models.NewDateRange(day("2025-02-27"), 3)
	assert.Equal(t, []time.Time{day("2025-02-27"), day("2025-02-28"), day("2025-03-01")}, r.Days())

	assert.Len(t, models.NewDateRange(day("2025-01-01"), 0).Days(), 1)

	backwards := models.DateRange{Start: day("2025-01-02"), End: day("2025-01-01")}
	assert.False(t, backwards.Valid())
	assert.Empty(t, backwards.Days())
}

func TestResolveRange(t *testing.T) {
	def := models.NewDateRange(day("2025-01-01"), 10)

	tests := map[string]struct {
		from, to      string
		days          int
		expected      models.DateRange
		expectedError error
	}{
		"Default": {
			expected: def,
		},
		"FromKeepsLength": {
			from:     "2025-03-01",
			expected: models.NewDateRange(day("2025-03-01"), 10),
		},
		"Days": {
			days:     3,
			expected: models.NewDateRange(day("2025-01-01"), 3),
		},
		"ToWinsOverDays": {
			from: "2025-03-01", to: "2025-03-31", days: 3,
			expected: models.DateRange{Start: day("2025-03-01"), End: day("2025-03-31")},
		},
		"SingleDay": {
			from: "2025-03-01", to: "2025-03-01",
			expected: models.NewDateRange(day("2025-03-01"), 1),
		},
		"Backwards":    {from: "2025-03-01", to: "2025-02-01", expectedError: customerrors.ErrInvalidDateRange},
		"BadFrom":      {from: "yesterday", expectedError: customerrors.ErrInvalidDateKey},
		"BadTo":        {to: "2025/01/05", expectedError: customerrors.ErrInvalidDateKey},
		"NegativeDays": {days: -1, expectedError: customerrors.ErrInvalidDateRange},
		"TooLong":      {to: "2040-01-01", expectedError: customerrors.ErrInvalidDateRange},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := models.ResolveRange(def, tc.from, tc.to, tc.days)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestHistory(t *testing.T) {
	h := models.NewHistory([]models.HistoricalRecord{
		{Date: day("2025-01-03"), Calls: 3},
		{Date: day("2025-01-01"), Calls: 1},
		{Date: day("2025-01-03"), Calls: 30},
	})

	require.Equal(t, 2, h.Len())
	recs := h.Records()
	assert.Equal(t, day("2025-01-01"), recs[0].Date)
	assert.Equal(t, 30, recs[1].Calls)

	_, ok := h.Get(day("2025-01-02"))
	assert.False(t, ok)

	var empty *models.History
	assert.Zero(t, empty.Len())
	assert.Nil(t, empty.Records())
	_, ok = empty.Get(day("2025-01-01"))
	assert.False(t, ok)
}
