// Package forecast predicts daily demand from history and turns it into a
// day-by-day staffing plan.
package forecast

import (
	"time"

	"wfm-planner/models"
)

// WeekdayModel predicts demand for a weekday as the plain mean of every
// historical day falling on that weekday. There is no recency weighting and
// no outlier rejection.
type WeekdayModel struct {
	history *models.History
}

// NewWeekdayModel returns a model over the given snapshot.
func NewWeekdayModel(history *models.History) *WeekdayModel {
	return &WeekdayModel{history: history}
}

// Predict returns the mean calls and handle time for the weekday.
// Records without calls or without a resolvable handle time are skipped.
// With no matching history it returns the zero estimate.
func (m *WeekdayModel) Predict(weekday time.Weekday) models.TrafficEstimate {
	var sumCalls, sumAHT float64
	matches := 0

	for _, rec := range m.history.Records() {
		if rec.Calls <= 0 {
			continue
		}
		aht := rec.ResolvedAHT()
		if aht <= 0 {
			continue
		}
		if rec.Date.Weekday() != weekday {
			continue
		}
		sumCalls += float64(rec.Calls)
		sumAHT += aht
		matches++
	}

	if matches == 0 {
		return models.TrafficEstimate{}
	}
	return models.TrafficEstimate{
		Calls: sumCalls / float64(matches),
		AHT:   sumAHT / float64(matches),
	}
}
