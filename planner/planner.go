// Package planner runs the forecasting and analysis engine against a
// historical store. Every run reads one snapshot of the store, so a forecast
// never sees a partially applied import.
package planner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"wfm-planner/analysis"
	"wfm-planner/errors"
	"wfm-planner/forecast"
	"wfm-planner/metrics"
	"wfm-planner/models"
	"wfm-planner/parser"
	"wfm-planner/staffing"
	"wfm-planner/store"
)

// Planner is safe for concurrent use when its store is.
type Planner struct {
	store  store.Store
	solver *staffing.Solver
	gap    *analysis.GapAnalyzer
	logger *slog.Logger
}

// New returns a Planner. A nil logger discards output.
func New(st store.Store, solver *staffing.Solver, gapOpts analysis.GapOptions, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Planner{
		store:  st,
		solver: solver,
		gap:    analysis.NewGapAnalyzer(solver, gapOpts),
		logger: logger,
	}
}

// ImportReport summarizes one import batch.
type ImportReport struct {
	BatchID  string   `json:"batch_id"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Columns  []string `json:"columns"`
	Errors   []error  `json:"-"`
}

func checkTarget(targetSL float64) error {
	// Written so that NaN fails too.
	if !(targetSL > 0 && targetSL <= 100) {
		return fmt.Errorf("%w: got %v", errors.ErrInvalidTargetSL, targetSL)
	}
	return nil
}

func (p *Planner) snapshot(ctx context.Context) (*models.History, error) {
	history, err := store.Snapshot(ctx, p.store)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	metrics.HistoryRecords.Set(float64(history.Len()))
	return history, nil
}

// Forecast predicts demand and staffing for every day in r.
func (p *Planner) Forecast(ctx context.Context, r models.DateRange, targetSL float64) (*models.Forecast, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %s after %s", errors.ErrInvalidDateRange, models.DateKey(r.Start), models.DateKey(r.End))
	}
	if err := checkTarget(targetSL); err != nil {
		return nil, err
	}
	history, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(metrics.ForecastDurationSeconds)
	result := forecast.NewGenerator(history, p.solver).Generate(r, targetSL)
	elapsed := timer.ObserveDuration()

	metrics.ResetForecastGauges()
	for _, row := range result.Rows {
		if row.InsufficientData {
			continue
		}
		metrics.SolverIterations.Observe(float64(row.Staffing.Iterations))
		if row.Staffing.CapReached {
			metrics.SolverCapReachedTotal.Inc()
			p.logger.WarnContext(ctx, "solver iteration cap reached",
				"date", models.DateKey(row.Date),
				"traffic", row.Staffing.Traffic,
				"service_level", row.Staffing.ServiceLevel,
			)
		}
	}
	s := result.Summary
	metrics.ForecastDays.Set(float64(s.Days))
	metrics.ForecastAvgDailyRequired.Set(s.AvgDailyRequired)
	metrics.ForecastNearPerfectDays.Set(float64(s.NearPerfectDays))
	metrics.ForecastInsufficientDataDays.Set(float64(s.InsufficientDataDays))

	p.logger.InfoContext(ctx, "forecast generated",
		"from", models.DateKey(r.Start),
		"to", models.DateKey(r.End),
		"days", s.Days,
		"history_records", history.Len(),
		"avg_daily_required", s.AvgDailyRequiredRound,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// Analyze runs the day-of-month gap analysis over the whole history.
func (p *Planner) Analyze(ctx context.Context, targetSL float64) (*models.GapReport, error) {
	if err := checkTarget(targetSL); err != nil {
		return nil, err
	}
	history, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(metrics.AnalysisDurationSeconds)
	report := p.gap.Analyze(history, targetSL)
	elapsed := timer.ObserveDuration()

	if report.SolverCapReached > 0 {
		metrics.SolverCapReachedTotal.Add(float64(report.SolverCapReached))
		p.logger.WarnContext(ctx, "solver iteration cap reached during gap analysis",
			"records", report.SolverCapReached,
			"target_sl", targetSL,
		)
	}

	counts := map[models.GapStatus]int{}
	for _, d := range report.Days {
		counts[d.Status]++
	}
	metrics.ResetAnalysisGauges()
	metrics.AnalysisBuckets.WithLabelValues(string(models.GapSurplus)).Set(float64(counts[models.GapSurplus]))
	metrics.AnalysisBuckets.WithLabelValues(string(models.GapDeficit)).Set(float64(counts[models.GapDeficit]))
	metrics.AnalysisBuckets.WithLabelValues(string(models.GapBalanced)).Set(float64(report.BalancedDays))

	p.logger.InfoContext(ctx, "gap analysis complete",
		"records_used", report.RecordsUsed,
		"surplus_days", counts[models.GapSurplus],
		"deficit_days", counts[models.GapDeficit],
		"rebalance", report.Rebalance != nil,
		"duration_ms", elapsed.Milliseconds(),
	)
	return report, nil
}

// Dashboard aggregates historical KPIs.
func (p *Planner) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	history, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.BuildDashboard(history), nil
}

// Import parses a CSV or XLSX file and merges every readable row into the
// store. Unreadable rows are skipped and reported.
func (p *Planner) Import(ctx context.Context, r io.Reader, name string) (*ImportReport, error) {
	start := time.Now()
	defer func() {
		metrics.ImportDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	result, err := parser.Parse(r, name)
	if err != nil {
		metrics.ImportErrorsTotal.WithLabelValues(errorType(err)).Inc()
		return nil, fmt.Errorf("importing %s: %w", name, err)
	}

	report := &ImportReport{
		BatchID: uuid.New().String(),
		Skipped: result.Skipped,
		Errors:  result.Errors,
	}
	for _, f := range []parser.Field{
		parser.FieldDate, parser.FieldCalls, parser.FieldAgents,
		parser.FieldAHT, parser.FieldTalkTime, parser.FieldSL,
	} {
		if _, ok := result.Columns[f]; ok {
			report.Columns = append(report.Columns, f.String())
		}
	}

	for _, e := range result.Errors {
		metrics.ImportErrorsTotal.WithLabelValues(errorType(e)).Inc()
		p.logger.DebugContext(ctx, "import row skipped", "batch_id", report.BatchID, "error", e.Error())
	}

	for _, frag := range result.Fragments {
		if frag.Patch.Empty() {
			continue
		}
		if err := p.store.Put(ctx, frag.Date, frag.Patch); err != nil {
			return report, fmt.Errorf("storing %s: %w", models.DateKey(frag.Date), err)
		}
		report.Imported++
		metrics.ImportRecordsTotal.Inc()
	}

	p.logger.InfoContext(ctx, "import complete",
		"batch_id", report.BatchID,
		"file", name,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"columns", report.Columns,
	)
	return report, nil
}

// Refresh recomputes the forecast and analysis gauges.
func (p *Planner) Refresh(ctx context.Context, r models.DateRange, targetSL float64) error {
	if _, err := p.Forecast(ctx, r, targetSL); err != nil {
		return err
	}
	_, err := p.Analyze(ctx, targetSL)
	return err
}

func errorType(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrMissingDate):
		return "missing_date"
	case stderrors.Is(err, errors.ErrInvalidDate):
		return "invalid_date"
	case stderrors.Is(err, errors.ErrNoDateColumn):
		return "no_date_column"
	case stderrors.Is(err, errors.ErrNoFieldsRecognized):
		return "no_fields"
	case stderrors.Is(err, errors.ErrEmptySheet):
		return "empty_sheet"
	case stderrors.Is(err, errors.ErrUnsupportedFormat):
		return "unsupported_format"
	case stderrors.Is(err, errors.ErrUnreadableInput):
		return "unreadable_input"
	default:
		return "other"
	}
}
