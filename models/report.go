package models

import "time"

// ActualDay is the observed staffing for a forecast date.
type ActualDay struct {
	Calls  int     `json:"calls"`
	Agents int     `json:"agents"`
	SL     float64 `json:"sl"`
}

// ForecastRow is the prediction and requirement for one calendar day.
type ForecastRow struct {
	Date             time.Time       `json:"date"`
	Weekday          time.Weekday    `json:"weekday"`
	Prediction       TrafficEstimate `json:"prediction"`
	InsufficientData bool            `json:"insufficient_data"`
	Staffing         StaffingResult  `json:"staffing"`
	Actual           *ActualDay      `json:"actual,omitempty"`
	// Diff is actual minus required agents, set when actual agents were recorded.
	Diff *int `json:"diff,omitempty"`
	// RealizationRate is actual / required agents.
	RealizationRate *float64 `json:"realization_rate,omitempty"`
	NearPerfect     bool     `json:"near_perfect"`
}

// ForecastSummary aggregates a forecast run.
type ForecastSummary struct {
	Days                  int     `json:"days"`
	AvgMonthlyCalls       float64 `json:"avg_monthly_calls"`
	AvgDailyRequired      float64 `json:"avg_daily_required"`
	AvgDailyRequiredRound int     `json:"avg_daily_required_rounded"`
	NearPerfectDays       int     `json:"near_perfect_days"`
	InsufficientDataDays  int     `json:"insufficient_data_days"`
	SolverCapReachedDays  int     `json:"solver_cap_reached_days"`
	TargetServiceLevel    float64 `json:"target_service_level"`
}

// Forecast is the full output of a forecast run.
type Forecast struct {
	Rows    []ForecastRow   `json:"rows"`
	Summary ForecastSummary `json:"summary"`
}

// GapStatus classifies a day-of-month bucket.
type GapStatus string

const (
	GapSurplus  GapStatus = "surplus"
	GapDeficit  GapStatus = "deficit"
	GapBalanced GapStatus = "balanced"
)

// DayOfMonthStat aggregates actual-vs-required staffing for one day of month.
type DayOfMonthStat struct {
	Day              int       `json:"day"`
	Status           GapStatus `json:"status"`
	MeanGap          float64   `json:"mean_gap"`
	MeanServiceLevel float64   `json:"mean_service_level"`
	MeanActualAgents float64   `json:"mean_actual_agents"`
	SampleCount      int       `json:"sample_count"`
	// Adjustment is the rounded number of agents to remove (surplus) or add (deficit).
	Adjustment int `json:"adjustment"`
}

// Rebalance proposes moving capacity from one day of month to another.
type Rebalance struct {
	FromDay       int     `json:"from_day"`
	ToDay         int     `json:"to_day"`
	SurplusAmount float64 `json:"surplus_amount"`
	DeficitAmount float64 `json:"deficit_amount"`
}

// GapReport is the output of the gap analysis.
type GapReport struct {
	// Days holds surplus and deficit buckets ordered by day of month.
	Days               []DayOfMonthStat `json:"days"`
	BalancedDays       int              `json:"balanced_days"`
	Rebalance          *Rebalance       `json:"rebalance,omitempty"`
	TargetServiceLevel float64          `json:"target_service_level"`
	RecordsUsed        int              `json:"records_used"`
	DefaultAHTUsed     int              `json:"default_aht_used"`
	// SolverCapReached counts records whose requirement stopped at the
	// iteration cap.
	SolverCapReached int `json:"solver_cap_reached"`
}

// HasRecommendations reports whether any bucket was flagged.
func (r *GapReport) HasRecommendations() bool {
	return r != nil && len(r.Days) > 0
}

// DashboardPoint is one day in the recent activity series.
type DashboardPoint struct {
	Date   time.Time `json:"date"`
	Calls  int       `json:"calls"`
	AHT    float64   `json:"aht"`
	SL     float64   `json:"sl"`
	Agents int       `json:"agents"`
}

// Dashboard holds historical KPI aggregates.
type Dashboard struct {
	Records     int              `json:"records"`
	AvgCalls    float64          `json:"avg_calls"`
	AvgAHT      float64          `json:"avg_aht"`
	AvgSL       float64          `json:"avg_sl"`
	AvgAgents   float64          `json:"avg_agents"`
	AvgTVE      float64          `json:"avg_tve"`
	AvgWeekday  float64          `json:"avg_weekday_calls"`
	AvgSaturday float64          `json:"avg_saturday_calls"`
	AvgSunday   float64          `json:"avg_sunday_calls"`
	Recent      []DashboardPoint `json:"recent"`
}
