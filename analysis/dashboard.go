package analysis

import (
	"math"
	"time"

	"wfm-planner/models"
)

// RecentDays is the length of the dashboard activity series.
const RecentDays = 30

// BuildDashboard aggregates KPIs over every record with calls.
// AHT, service level and TVE are weighted by call volume.
func BuildDashboard(history *models.History) *models.Dashboard {
	dash := &models.Dashboard{Recent: make([]models.DashboardPoint, 0, RecentDays)}

	var (
		totalCalls, totalAgents              float64
		ahtWeighted, slWeighted, tveWeighted float64
		weekdayCalls, satCalls, sunCalls     float64
		weekdayN, satN, sunN                 int
	)

	var withCalls []models.HistoricalRecord
	for _, rec := range history.Records() {
		if rec.Calls <= 0 {
			continue
		}
		withCalls = append(withCalls, rec)

		calls := float64(rec.Calls)
		aht := rec.ResolvedAHT()
		totalCalls += calls
		totalAgents += float64(rec.Agents)
		ahtWeighted += calls * aht
		slWeighted += calls * rec.SL
		if rec.Agents > 0 {
			if tve := aht * (rec.SL / 100) / float64(rec.Agents); tve > 0 {
				tveWeighted += calls * tve
			}
		}

		switch rec.Date.Weekday() {
		case time.Sunday:
			sunCalls += calls
			sunN++
		case time.Saturday:
			satCalls += calls
			satN++
		default:
			weekdayCalls += calls
			weekdayN++
		}
	}

	dash.Records = len(withCalls)
	if dash.Records == 0 {
		return dash
	}
	n := float64(dash.Records)
	dash.AvgCalls = totalCalls / n
	dash.AvgAgents = totalAgents / n
	dash.AvgAHT = ahtWeighted / totalCalls
	dash.AvgSL = slWeighted / totalCalls
	dash.AvgTVE = tveWeighted / totalCalls
	dash.AvgWeekday = mean(weekdayCalls, weekdayN)
	dash.AvgSaturday = mean(satCalls, satN)
	dash.AvgSunday = mean(sunCalls, sunN)

	start := max(0, len(withCalls)-RecentDays)
	for _, rec := range withCalls[start:] {
		dash.Recent = append(dash.Recent, models.DashboardPoint{
			Date:   rec.Date,
			Calls:  rec.Calls,
			AHT:    math.Round(rec.ResolvedAHT()),
			SL:     rec.SL,
			Agents: rec.Agents,
		})
	}
	return dash
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
