package forecast_test

import (
	"testing"
	"time"

	"wfm-planner/forecast"
	"wfm-planner/models"
	"wfm-planner/staffing"

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

// fourMondays is 2025-01-06 .. 2025-01-27, all Mondays.
func fourMondays(agents ...int) []models.HistoricalRecord {
	dates := []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"}
	recs := make([]models.HistoricalRecord, len(dates))
	for i, d := range dates {
		recs[i] = models.HistoricalRecord{Date: day(d), Calls: 2000, AHT: 300}
		if i < len(agents) {
			recs[i].Agents = agents[i]
		}
	}
	return recs
}

func TestPredict(t *testing.T) {
	tests := map[string]struct {
		records  []models.HistoricalRecord
		weekday  time.Weekday
		expected models.TrafficEstimate
	}{
		"FourMondays": {
			records:  fourMondays(),
			weekday:  time.Monday,
			expected: models.TrafficEstimate{Calls: 2000, AHT: 300},
		},
		"WeekdayMismatch": {
			records:  fourMondays(),
			weekday:  time.Tuesday,
			expected: models.TrafficEstimate{},
		},
		"EmptyHistory": {
			weekday:  time.Monday,
			expected: models.TrafficEstimate{},
		},
		"MeanOfMatches": {
			records: []models.HistoricalRecord{
				{Date: day("2025-01-07"), Calls: 1000, AHT: 200},
				{Date: day("2025-01-14"), Calls: 3000, AHT: 400},
				{Date: day("2025-01-15"), Calls: 9000, AHT: 900},
			},
			weekday:  time.Tuesday,
			expected: models.TrafficEstimate{Calls: 2000, AHT: 300},
		},
		"AHTDerivedFromTalkTime": {
			records: []models.HistoricalRecord{
				// 100 hours over 1200 calls = 300 s
				{Date: day("2025-02-05"), Calls: 1200, TalkTime: 100},
			},
			weekday:  time.Wednesday,
			expected: models.TrafficEstimate{Calls: 1200, AHT: 300},
		},
		"SkipsUnresolvableAHT": {
			records: []models.HistoricalRecord{
				{Date: day("2025-02-06"), Calls: 5000},
				{Date: day("2025-02-13"), Calls: 1000, AHT: 240},
			},
			weekday:  time.Thursday,
			expected: models.TrafficEstimate{Calls: 1000, AHT: 240},
		},
		"SkipsZeroCalls": {
			records: []models.HistoricalRecord{
				{Date: day("2025-02-07"), Calls: 0, AHT: 300, Agents: 30},
			},
			weekday:  time.Friday,
			expected: models.TrafficEstimate{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			model := forecast.NewWeekdayModel(models.NewHistory(tc.records))
			assert.Equal(t, tc.expected, model.Predict(tc.weekday))
		})
	}
}

func TestGenerate(t *testing.T) {
	history := models.NewHistory(fourMondays(25, 26, 27, 20))
	solver := staffing.NewSolver(staffing.Options{})
	gen := forecast.NewGenerator(history, solver)

	r := models.DateRange{Start: day("2025-01-06"), End: day("2025-01-12")}
	result := gen.Generate(r, 80)
	require.Len(t, result.Rows, 7)

	monday := result.Rows[0]
	assert.Equal(t, time.Monday, monday.Weekday)
	assert.Equal(t, models.TrafficEstimate{Calls: 2000, AHT: 300}, monday.Prediction)
	assert.Equal(t, 25, monday.Staffing.RequiredAgents)
	assert.Equal(t, 17, monday.Staffing.BaseAgents)
	require.NotNil(t, monday.Actual)
	require.NotNil(t, monday.Diff)
	assert.Equal(t, 0, *monday.Diff)
	require.NotNil(t, monday.RealizationRate)
	assert.InDelta(t, 1.0, *monday.RealizationRate, 1e-12)
	assert.True(t, monday.NearPerfect)

	for _, row := range result.Rows[1:] {
		assert.True(t, row.InsufficientData, row.Date)
		assert.Equal(t, 0, row.Staffing.RequiredAgents)
		assert.Nil(t, row.Actual)
		assert.Nil(t, row.Diff)
	}

	assert.Equal(t, 7, result.Summary.Days)
	assert.InDelta(t, 2000.0/7*30, result.Summary.AvgMonthlyCalls, 1e-9)
	assert.InDelta(t, 25.0/7, result.Summary.AvgDailyRequired, 1e-12)
	assert.Equal(t, 4, result.Summary.AvgDailyRequiredRound)
	assert.Equal(t, 1, result.Summary.NearPerfectDays)
	assert.Equal(t, 6, result.Summary.InsufficientDataDays)
	assert.Equal(t, 80.0, result.Summary.TargetServiceLevel)
}

func TestGenerate_RealizationBand(t *testing.T) {
	history := models.NewHistory(fourMondays(25, 26, 27, 20))
	gen := forecast.NewGenerator(history, staffing.NewSolver(staffing.Options{}))

	tests := map[string]struct {
		date        string
		diff        int
		nearPerfect bool
	}{
		"Exact":        {date: "2025-01-06", diff: 0, nearPerfect: true},
		"FourPercent":  {date: "2025-01-13", diff: 1, nearPerfect: true},
		"EightPercent": {date: "2025-01-20", diff: 2, nearPerfect: false},
		"Understaffed": {date: "2025-01-27", diff: -5, nearPerfect: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := day(tc.date)
			result := gen.Generate(models.DateRange{Start: d, End: d}, 80)
			require.Len(t, result.Rows, 1)
			row := result.Rows[0]
			require.NotNil(t, row.Diff)
			assert.Equal(t, tc.diff, *row.Diff)
			assert.Equal(t, tc.nearPerfect, row.NearPerfect)
		})
	}
}

func TestGenerate_ActualWithoutAgents(t *testing.T) {
	history := models.NewHistory(fourMondays())
	gen := forecast.NewGenerator(history, staffing.NewSolver(staffing.Options{}))

	d := day("2025-01-06")
	row := gen.Generate(models.DateRange{Start: d, End: d}, 80).Rows[0]
	require.NotNil(t, row.Actual)
	assert.Equal(t, 2000, row.Actual.Calls)
	assert.Nil(t, row.Diff)
	assert.Nil(t, row.RealizationRate)
	assert.False(t, row.NearPerfect)
}

func TestGenerate_Deterministic(t *testing.T) {
	records := append(fourMondays(25, 26, 27, 20),
		models.HistoricalRecord{Date: day("2025-01-07"), Calls: 1733, AHT: 287.5, Agents: 22},
		models.HistoricalRecord{Date: day("2025-01-14"), Calls: 1911, TalkTime: 151, Agents: 23},
	)
	r := models.NewDateRange(day("2025-01-01"), 60)

	first := forecast.NewGenerator(models.NewHistory(records), staffing.NewSolver(staffing.Options{})).Generate(r, 85)
	second := forecast.NewGenerator(models.NewHistory(records), staffing.NewSolver(staffing.Options{})).Generate(r, 85)
	assert.Equal(t, first, second)
}

func TestGenerate_EmptyRange(t *testing.T) {
	gen := forecast.NewGenerator(models.NewHistory(nil), staffing.NewSolver(staffing.Options{}))
	result := gen.Generate(models.DateRange{Start: day("2025-02-01"), End: day("2025-01-01")}, 80)

	assert.Empty(t, result.Rows)
	assert.Equal(t, 0, result.Summary.Days)
	assert.Equal(t, 0.0, result.Summary.AvgMonthlyCalls)
}
