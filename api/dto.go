package api

import (
	"wfm-planner/models"
)

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RecordDTO is a historical record with its date as YYYY-MM-DD.
type RecordDTO struct {
	Date     string  `json:"date"`
	Calls    int     `json:"calls"`
	Agents   int     `json:"agents"`
	AHT      float64 `json:"aht"`
	TalkTime float64 `json:"talk_time"`
	SL       float64 `json:"sl"`
	// ResolvedAHT is AHT, or the value derived from talk time.
	ResolvedAHT float64 `json:"resolved_aht"`
}

func toRecordDTO(rec models.HistoricalRecord) RecordDTO {
	return RecordDTO{
		Date:        models.DateKey(rec.Date),
		Calls:       rec.Calls,
		Agents:      rec.Agents,
		AHT:         rec.AHT,
		TalkTime:    rec.TalkTime,
		SL:          rec.SL,
		ResolvedAHT: rec.ResolvedAHT(),
	}
}

// ImportResponse summarizes an upload.
type ImportResponse struct {
	BatchID  string   `json:"batch_id"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Columns  []string `json:"columns"`
	Errors   []string `json:"errors,omitempty"`
}
