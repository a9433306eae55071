package forecast

import (
	"math"
	"time"

	"wfm-planner/models"
	"wfm-planner/staffing"
)

// Realization band in which actual staffing counts as near-perfect.
const (
	NearPerfectMin = 1.00
	NearPerfectMax = 1.05
)

// Generator combines the weekday model with the staffing solver over a
// date range.
type Generator struct {
	history *models.History
	model   *WeekdayModel
	solver  *staffing.Solver
}

// NewGenerator returns a Generator over the given snapshot.
func NewGenerator(history *models.History, solver *staffing.Solver) *Generator {
	return &Generator{
		history: history,
		model:   NewWeekdayModel(history),
		solver:  solver,
	}
}

// Generate forecasts every day in r at the targetSL percent service level.
// The output depends only on the snapshot and arguments.
func (g *Generator) Generate(r models.DateRange, targetSL float64) *models.Forecast {
	days := r.Days()
	forecast := &models.Forecast{
		Rows: make([]models.ForecastRow, 0, len(days)),
	}

	var totalCalls float64
	totalRequired := 0
	for _, day := range days {
		row := g.row(day, targetSL)
		forecast.Rows = append(forecast.Rows, row)

		totalCalls += row.Prediction.Calls
		totalRequired += row.Staffing.RequiredAgents
		if row.NearPerfect {
			forecast.Summary.NearPerfectDays++
		}
		if row.InsufficientData {
			forecast.Summary.InsufficientDataDays++
		}
		if row.Staffing.CapReached {
			forecast.Summary.SolverCapReachedDays++
		}
	}

	summary := &forecast.Summary
	summary.Days = len(forecast.Rows)
	summary.TargetServiceLevel = targetSL
	if summary.Days > 0 {
		n := float64(summary.Days)
		summary.AvgMonthlyCalls = totalCalls / n * 30
		summary.AvgDailyRequired = float64(totalRequired) / n
		summary.AvgDailyRequiredRound = int(math.Round(summary.AvgDailyRequired))
	}
	return forecast
}

func (g *Generator) row(day time.Time, targetSL float64) models.ForecastRow {
	prediction := g.model.Predict(day.Weekday())
	row := models.ForecastRow{
		Date:             day,
		Weekday:          day.Weekday(),
		Prediction:       prediction,
		InsufficientData: prediction.Insufficient(),
		Staffing:         g.solver.Solve(prediction.Calls, prediction.AHT, targetSL),
	}

	rec, ok := g.history.Get(day)
	if !ok {
		return row
	}
	row.Actual = &models.ActualDay{Calls: rec.Calls, Agents: rec.Agents, SL: rec.SL}

	// Zero agents means nothing was recorded for the day.
	if rec.Agents <= 0 {
		return row
	}
	diff := rec.Agents - row.Staffing.RequiredAgents
	row.Diff = &diff

	if row.Staffing.RequiredAgents > 0 {
		rate := float64(rec.Agents) / float64(row.Staffing.RequiredAgents)
		row.RealizationRate = &rate
		row.NearPerfect = rate >= NearPerfectMin && rate <= NearPerfectMax
	}
	return row
}
