package planner_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"wfm-planner/analysis"
	customerrors "wfm-planner/errors"
	"wfm-planner/metrics"
	"wfm-planner/models"
	"wfm-planner/planner"
	"wfm-planner/staffing"
	"wfm-planner/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func day(s string) time.Time {
	t, err := models.ParseDateKey(s)
	if err != nil {
		panic(err)
	}
	return t
}

// seededStore holds four Mondays of 2000 calls at 300 s AHT.
func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()
	for i, d := range []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"} {
		require.NoError(t, m.Put(ctx, day(d), models.RecordPatch{
			Calls: intp(2000), AHT: floatp(300), Agents: intp(24 + i), SL: floatp(85),
		}))
	}
	return m
}

func newPlanner(st store.Store, logs *bytes.Buffer) *planner.Planner {
	var logger *slog.Logger
	if logs != nil {
		logger = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return planner.New(st, staffing.NewSolver(staffing.Options{}), analysis.GapOptions{}, logger)
}

func TestForecast(t *testing.T) {
	var logs bytes.Buffer
	p := newPlanner(seededStore(t), &logs)

	f, err := p.Forecast(context.Background(), models.NewDateRange(day("2025-01-06"), 7), 80)
	require.NoError(t, err)

	require.Len(t, f.Rows, 7)
	assert.Equal(t, 25, f.Rows[0].Staffing.RequiredAgents)
	require.NotNil(t, f.Rows[0].Diff)
	assert.Equal(t, -1, *f.Rows[0].Diff)
	assert.Equal(t, 6, f.Summary.InsufficientDataDays)
	assert.InDelta(t, 25.0/7, f.Summary.AvgDailyRequired, 1e-9)

	assert.Equal(t, 7.0, testutil.ToFloat64(metrics.ForecastDays))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.ForecastInsufficientDataDays))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.HistoryRecords))
	assert.Contains(t, logs.String(), "forecast generated")
}

func TestForecast_CapReachedIsLogged(t *testing.T) {
	var logs bytes.Buffer
	solver := staffing.NewSolver(staffing.Options{MaxIterations: 2})
	p := planner.New(seededStore(t), solver, analysis.GapOptions{},
		slog.New(slog.NewTextHandler(&logs, nil)))

	before := testutil.ToFloat64(metrics.SolverCapReachedTotal)
	f, err := p.Forecast(context.Background(), models.NewDateRange(day("2025-01-06"), 1), 80)
	require.NoError(t, err)

	assert.True(t, f.Rows[0].Staffing.CapReached)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SolverCapReachedTotal))
	assert.Contains(t, logs.String(), "solver iteration cap reached")
	assert.Contains(t, logs.String(), "date=2025-01-06")
}

func TestForecast_InvalidInput(t *testing.T) {
	p := newPlanner(store.NewMemory(), nil)
	ctx := context.Background()

	_, err := p.Forecast(ctx, models.DateRange{Start: day("2025-02-01"), End: day("2025-01-01")}, 80)
	assert.ErrorIs(t, err, customerrors.ErrInvalidDateRange)

	tests := map[string]float64{
		"Zero":         0,
		"Negative":     -5,
		"AboveHundred": 100.5,
		"NaN":          math.NaN(),
		"Infinity":     math.Inf(1),
	}

	for name, sl := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := p.Forecast(ctx, models.NewDateRange(day("2025-01-01"), 1), sl)
			assert.ErrorIs(t, err, customerrors.ErrInvalidTargetSL)

			_, err = p.Analyze(ctx, sl)
			assert.ErrorIs(t, err, customerrors.ErrInvalidTargetSL)
		})
	}
}

func TestAnalyze_CapReachedIsLogged(t *testing.T) {
	var logs bytes.Buffer
	ctx := context.Background()
	m := store.NewMemory()
	for _, d := range []string{"2025-01-06", "2025-02-06"} {
		require.NoError(t, m.Put(ctx, day(d), models.RecordPatch{
			Calls: intp(2000), AHT: floatp(300), Agents: intp(30), SL: floatp(90),
		}))
	}
	solver := staffing.NewSolver(staffing.Options{MaxIterations: 2})
	p := planner.New(m, solver, analysis.GapOptions{}, slog.New(slog.NewTextHandler(&logs, nil)))

	before := testutil.ToFloat64(metrics.SolverCapReachedTotal)
	report, err := p.Analyze(ctx, 80)
	require.NoError(t, err)

	assert.Equal(t, 2, report.SolverCapReached)
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.SolverCapReachedTotal))
	assert.Contains(t, logs.String(), "solver iteration cap reached during gap analysis")
}

func TestForecast_EmptyStore(t *testing.T) {
	p := newPlanner(store.NewMemory(), nil)

	f, err := p.Forecast(context.Background(), models.NewDateRange(day("2025-01-01"), 3), 80)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Summary.InsufficientDataDays)
	for _, row := range f.Rows {
		assert.Zero(t, row.Staffing.RequiredAgents)
	}
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	// Day 6 is overstaffed and day 13 understaffed in both months.
	for _, d := range []struct {
		date   string
		agents int
		sl     float64
	}{
		{"2025-01-06", 30, 95}, {"2025-02-06", 31, 96},
		{"2025-01-13", 20, 70}, {"2025-02-13", 19, 68},
	} {
		require.NoError(t, m.Put(ctx, day(d.date), models.RecordPatch{
			Calls: intp(2000), AHT: floatp(300), Agents: intp(d.agents), SL: floatp(d.sl),
		}))
	}

	p := newPlanner(m, nil)
	report, err := p.Analyze(ctx, 80)
	require.NoError(t, err)

	require.Len(t, report.Days, 2)
	require.NotNil(t, report.Rebalance)
	assert.Equal(t, 6, report.Rebalance.FromDay)
	assert.Equal(t, 13, report.Rebalance.ToDay)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalysisBuckets.WithLabelValues("surplus")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalysisBuckets.WithLabelValues("deficit")))
}

func TestDashboard(t *testing.T) {
	p := newPlanner(seededStore(t), nil)

	d, err := p.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, d.Records)
	assert.Equal(t, 2000.0, d.AvgCalls)
	assert.Equal(t, 2000.0, d.AvgWeekday)
	assert.Len(t, d.Recent, 4)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	var logs bytes.Buffer
	p := newPlanner(m, &logs)

	before := testutil.ToFloat64(metrics.ImportErrorsTotal.WithLabelValues("invalid_date"))

	input := `Tarih,Çağrı,Temsilci,Görüşme Süresi
03.03.2025,1800,24,150
04.03.2025,1750,23,
31.02.2025,1000,10,80
`
	report, err := p.Import(ctx, strings.NewReader(input), "march.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"date", "calls", "agents", "talk_time"}, report.Columns)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ImportErrorsTotal.WithLabelValues("invalid_date")))
	assert.Contains(t, logs.String(), "import complete")
	assert.Contains(t, logs.String(), "batch_id="+report.BatchID)

	rec, ok, err := m.Get(ctx, day("2025-03-03"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1800, rec.Calls)
	assert.InDelta(t, 300.0, rec.ResolvedAHT(), 1e-9)

	// A second import merges into the existing record.
	_, err = p.Import(ctx, strings.NewReader("Date,SL\n2025-03-03,91\n"), "sl.csv")
	require.NoError(t, err)
	rec, _, err = m.Get(ctx, day("2025-03-03"))
	require.NoError(t, err)
	assert.Equal(t, 1800, rec.Calls)
	assert.Equal(t, 91.0, rec.SL)
}

func TestImport_Errors(t *testing.T) {
	p := newPlanner(store.NewMemory(), nil)
	ctx := context.Background()

	_, err := p.Import(ctx, strings.NewReader("Calls,Agents\n1,2\n"), "x.csv")
	assert.ErrorIs(t, err, customerrors.ErrNoDateColumn)

	_, err = p.Import(ctx, strings.NewReader("{}"), "x.json")
	assert.ErrorIs(t, err, customerrors.ErrUnsupportedFormat)
}

// failingStore rejects every write.
type failingStore struct{ *store.Memory }

func (failingStore) Put(context.Context, time.Time, models.RecordPatch) error {
	return fmt.Errorf("disk full")
}

func TestImport_StoreFailure(t *testing.T) {
	p := newPlanner(failingStore{store.NewMemory()}, nil)

	report, err := p.Import(context.Background(), strings.NewReader("Date,Calls\n2025-03-03,5\n"), "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing 2025-03-03")
	require.NotNil(t, report)
	assert.Zero(t, report.Imported)
}

func TestRefresh(t *testing.T) {
	p := newPlanner(seededStore(t), nil)
	require.NoError(t, p.Refresh(context.Background(), models.NewDateRange(day("2025-01-06"), 14), 80))
	assert.Equal(t, 14.0, testutil.ToFloat64(metrics.ForecastDays))
}
