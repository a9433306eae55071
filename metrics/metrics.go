// Package metrics provides Prometheus observability metrics for the planner.
// It includes Critical and Important metrics for business and operational visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// ForecastDays tracks the number of days in the latest forecast.
var ForecastDays = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "forecast",
	Name:      "days",
	Help:      "Number of days covered by the latest forecast run",
})

// ForecastAvgDailyRequired tracks the mean required headcount of the latest forecast.
var ForecastAvgDailyRequired = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "forecast",
	Name:      "avg_daily_required_agents",
	Help:      "Average daily required agents (after shrinkage) in the latest forecast",
})

// ForecastNearPerfectDays tracks days where actual staffing was within the near-perfect band.
var ForecastNearPerfectDays = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "forecast",
	Name:      "near_perfect_days",
	Help:      "Days in the latest forecast whose realization rate fell in the near-perfect band",
})

// ForecastInsufficientDataDays tracks days without enough history to predict.
// High values indicate the history is too thin for the requested range.
var ForecastInsufficientDataDays = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "forecast",
	Name:      "insufficient_data_days",
	Help:      "Days in the latest forecast with no usable weekday history",
})

// AnalysisBuckets tracks flagged day-of-month buckets by status.
var AnalysisBuckets = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "analysis",
	Name:      "buckets",
	Help:      "Day-of-month buckets in the latest gap analysis by status",
}, []string{"status"})

// SolverCapReachedTotal counts solves that stopped at the iteration cap.
var SolverCapReachedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "solver",
	Name:      "cap_reached_total",
	Help:      "Count of staffing solves that hit the iteration cap before meeting the target",
})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// SolverIterations tracks agent increments per solve.
var SolverIterations = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "solver",
	Name:      "iterations",
	Help:      "Number of agent counts evaluated per staffing solve",
	Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 500, 1000, 5000},
})

// ImportErrorsTotal tracks skipped import rows by error type.
var ImportErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "import",
	Name:      "errors_total",
	Help:      "Total skipped import rows by error type",
}, []string{"error_type"})

// ImportRecordsTotal tracks total rows merged into the history.
var ImportRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "import",
	Name:      "records_total",
	Help:      "Total import rows merged into the historical store",
})

// ImportDurationSeconds tracks time to parse and store an import file.
var ImportDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "import",
	Name:      "duration_seconds",
	Help:      "Time taken to parse and store an import file",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// ForecastDurationSeconds tracks time to generate a forecast.
var ForecastDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "forecast",
	Name:      "duration_seconds",
	Help:      "Time taken to generate a forecast",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// AnalysisDurationSeconds tracks time to run the gap analysis.
var AnalysisDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "analysis",
	Name:      "duration_seconds",
	Help:      "Time taken to run the gap analysis",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// HistoryRecords tracks the size of the snapshot used by the latest run.
var HistoryRecords = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "history",
	Name:      "records",
	Help:      "Number of historical records in the latest snapshot",
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetForecastGauges resets all forecast gauges before a new forecast run.
func ResetForecastGauges() {
	ForecastDays.Set(0)
	ForecastAvgDailyRequired.Set(0)
	ForecastNearPerfectDays.Set(0)
	ForecastInsufficientDataDays.Set(0)
}

// ResetAnalysisGauges resets the bucket gauges before a new analysis run.
func ResetAnalysisGauges() {
	AnalysisBuckets.Reset()
}
