package models

import "time"

// HistoricalRecord is one day of observed contact-center activity.
// Zero values are treated as absent throughout the engine.
type HistoricalRecord struct {
	Date     time.Time `json:"date"`
	Calls    int       `json:"calls"`
	Agents   int       `json:"agents"`
	AHT      float64   `json:"aht"`       // seconds per call
	TalkTime float64   `json:"talk_time"` // hours, aggregate for the day
	SL       float64   `json:"sl"`        // observed service level, 0-100
}

// ResolvedAHT returns the handle time in seconds, deriving it from talk time
// when the AHT field is empty. It returns 0 when neither is usable.
func (r HistoricalRecord) ResolvedAHT() float64 {
	if r.AHT > 0 {
		return r.AHT
	}
	if r.TalkTime > 0 && r.Calls > 0 {
		return r.TalkTime * 3600 / float64(r.Calls)
	}
	return 0
}

// RecordPatch carries a partial update for a HistoricalRecord.
// Nil fields are left untouched by the store.
type RecordPatch struct {
	Calls    *int     `json:"calls,omitempty"`
	Agents   *int     `json:"agents,omitempty"`
	AHT      *float64 `json:"aht,omitempty"`
	TalkTime *float64 `json:"talk_time,omitempty"`
	SL       *float64 `json:"sl,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p RecordPatch) Empty() bool {
	return p.Calls == nil && p.Agents == nil && p.AHT == nil && p.TalkTime == nil && p.SL == nil
}

// Apply merges the patch into rec and returns the result.
func (p RecordPatch) Apply(rec HistoricalRecord) HistoricalRecord {
	if p.Calls != nil {
		rec.Calls = *p.Calls
	}
	if p.Agents != nil {
		rec.Agents = *p.Agents
	}
	if p.AHT != nil {
		rec.AHT = *p.AHT
	}
	if p.TalkTime != nil {
		rec.TalkTime = *p.TalkTime
	}
	if p.SL != nil {
		rec.SL = *p.SL
	}
	return rec
}

// TrafficEstimate is the expected daily demand for one weekday.
// {0, 0} means there was not enough history to predict.
type TrafficEstimate struct {
	Calls float64 `json:"calls"`
	AHT   float64 `json:"aht"`
}

// Insufficient reports whether the estimate carries no usable demand.
func (e TrafficEstimate) Insufficient() bool {
	return e.Calls <= 0 || e.AHT <= 0
}

// StaffingResult holds the outcome of one Erlang C staffing solve.
type StaffingResult struct {
	// RequiredAgents is the shrinkage-inflated headcount.
	RequiredAgents int `json:"required_agents"`
	// BaseAgents is the concurrent on-queue count that meets the target.
	BaseAgents   int     `json:"base_agents"`
	Traffic      float64 `json:"traffic_erlangs"`
	ServiceLevel float64 `json:"service_level"`
	// TVE is a time-value-efficiency proxy (aht*sl/agents). It is a
	// diagnostic only, not a standard queueing quantity.
	TVE        float64 `json:"tve"`
	Iterations int     `json:"iterations"`
	CapReached bool    `json:"cap_reached"`
}
