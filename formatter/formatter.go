package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"wfm-planner/models"
)

// Output formats accepted by the commands and the API.
const (
	Text = "text"
	JSON = "json"
	CSV  = "csv"
)

// ValidFormat reports whether name is a supported output format.
func ValidFormat(name string) bool {
	switch name {
	case Text, JSON, CSV:
		return true
	}
	return false
}

// FormatForecastText returns one line per day followed by the summary.
func FormatForecastText(f *models.Forecast) string {
	var sb strings.Builder

	for _, row := range f.Rows {
		sb.WriteString(formatForecastLine(row))
		sb.WriteString("\n")
	}

	s := f.Summary
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Target service level: %s%%\n", formatFloat(s.TargetServiceLevel, 1)))
	sb.WriteString(fmt.Sprintf("Days: %d\n", s.Days))
	sb.WriteString(fmt.Sprintf("Avg monthly calls: %.0f\n", s.AvgMonthlyCalls))
	sb.WriteString(fmt.Sprintf("Avg daily required agents: %d (%.2f)\n", s.AvgDailyRequiredRound, s.AvgDailyRequired))
	sb.WriteString(fmt.Sprintf("Near-perfect days: %d\n", s.NearPerfectDays))
	if s.InsufficientDataDays > 0 {
		sb.WriteString(fmt.Sprintf("Days without history: %d\n", s.InsufficientDataDays))
	}
	if s.SolverCapReachedDays > 0 {
		sb.WriteString(fmt.Sprintf("⚠️  Solver iteration cap reached on %d days\n", s.SolverCapReachedDays))
	}
	return sb.String()
}

// formatForecastLine formats a single forecast row for text output
func formatForecastLine(row models.ForecastRow) string {
	date := models.DateKey(row.Date)
	day := row.Weekday.String()[:3]
	if row.InsufficientData {
		return fmt.Sprintf("%s %s : no data", date, day)
	}

	line := fmt.Sprintf("%s %s : calls=%.0f aht=%.0fs required=%d sl=%s%%",
		date, day, row.Prediction.Calls, row.Prediction.AHT,
		row.Staffing.RequiredAgents, formatFloat(row.Staffing.ServiceLevel*100, 1))

	if row.Diff != nil {
		line += fmt.Sprintf(" ; actual=%d diff=%+d", row.Actual.Agents, *row.Diff)
		if row.RealizationRate != nil {
			line += fmt.Sprintf(" rate=%.1f%%", *row.RealizationRate*100)
		}
		if row.NearPerfect {
			line += " ✓"
		}
	}
	if row.Staffing.CapReached {
		line += " [cap reached]"
	}
	return line
}

// FormatForecastJSON returns the JSON representation of the forecast
func FormatForecastJSON(f *models.Forecast) string {
	return marshal(f)
}

// FormatForecastCSV returns the CSV representation of the forecast rows
func FormatForecastCSV(f *models.Forecast) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{
		"Date", "Weekday", "Predicted Calls", "Predicted AHT", "Traffic",
		"Required Agents", "Base Agents", "Service Level", "TVE",
		"Actual Calls", "Actual Agents", "Actual SL", "Diff", "Realization Rate",
		"Near Perfect", "Insufficient Data", "Cap Reached",
	})

	for _, row := range f.Rows {
		writer.Write(forecastRecord(row))
	}

	writer.Flush()
	return sb.String()
}

// forecastRecord builds a single CSV row; actual columns stay empty when
// nothing was recorded for the day.
func forecastRecord(row models.ForecastRow) []string {
	st := row.Staffing
	record := []string{
		models.DateKey(row.Date),
		row.Weekday.String(),
		formatFloat(row.Prediction.Calls, 2),
		formatFloat(row.Prediction.AHT, 2),
		formatFloat(st.Traffic, 4),
		strconv.Itoa(st.RequiredAgents),
		strconv.Itoa(st.BaseAgents),
		formatFloat(st.ServiceLevel, 4),
		formatFloat(st.TVE, 2),
	}

	if row.Actual != nil {
		record = append(record,
			strconv.Itoa(row.Actual.Calls),
			strconv.Itoa(row.Actual.Agents),
			formatFloat(row.Actual.SL, 2),
		)
	} else {
		record = append(record, "", "", "")
	}

	diff, rate := "", ""
	if row.Diff != nil {
		diff = strconv.Itoa(*row.Diff)
	}
	if row.RealizationRate != nil {
		rate = formatFloat(*row.RealizationRate, 4)
	}

	return append(record, diff, rate,
		yesNo(row.NearPerfect), yesNo(row.InsufficientData), yesNo(st.CapReached))
}

// FormatGapText returns the flagged day-of-month buckets and the rebalance
// recommendation.
func FormatGapText(r *models.GapReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Target service level: %s%% ; records=%d ; balanced days=%d\n",
		formatFloat(r.TargetServiceLevel, 1), r.RecordsUsed, r.BalancedDays))
	if r.DefaultAHTUsed > 0 {
		sb.WriteString(fmt.Sprintf("Default AHT used for %d records\n", r.DefaultAHTUsed))
	}

	if !r.HasRecommendations() {
		sb.WriteString("No surplus or deficit days\n")
		return sb.String()
	}

	for _, d := range r.Days {
		action := "remove"
		if d.Status == models.GapDeficit {
			action = "add"
		}
		sb.WriteString(fmt.Sprintf("day %02d : %-7s gap=%+.2f sl=%s%% actual=%.1f samples=%d ; %s %d\n",
			d.Day, d.Status, d.MeanGap, formatFloat(d.MeanServiceLevel, 1),
			d.MeanActualAgents, d.SampleCount, action, d.Adjustment))
	}

	if rb := r.Rebalance; rb != nil {
		sb.WriteString(fmt.Sprintf("\nMove capacity from day %d (surplus %.2f) to day %d (deficit %.2f)\n",
			rb.FromDay, rb.SurplusAmount, rb.ToDay, rb.DeficitAmount))
	}
	return sb.String()
}

// FormatGapJSON returns the JSON representation of the gap report
func FormatGapJSON(r *models.GapReport) string {
	return marshal(r)
}

// FormatGapCSV returns the CSV representation of the flagged buckets
func FormatGapCSV(r *models.GapReport) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{
		"Day", "Status", "Mean Gap", "Mean SL", "Mean Actual Agents", "Samples", "Adjustment",
	})
	for _, d := range r.Days {
		writer.Write([]string{
			strconv.Itoa(d.Day),
			string(d.Status),
			formatFloat(d.MeanGap, 4),
			formatFloat(d.MeanServiceLevel, 2),
			formatFloat(d.MeanActualAgents, 2),
			strconv.Itoa(d.SampleCount),
			strconv.Itoa(d.Adjustment),
		})
	}

	writer.Flush()
	return sb.String()
}

// FormatDashboardText returns the KPI block and the recent series.
func FormatDashboardText(d *models.Dashboard) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Records: %d\n", d.Records))
	sb.WriteString(fmt.Sprintf("Avg calls: %.0f ; AHT: %.0fs ; SL: %s%% ; agents: %.1f ; TVE: %.2f\n",
		d.AvgCalls, d.AvgAHT, formatFloat(d.AvgSL, 1), d.AvgAgents, d.AvgTVE))
	sb.WriteString(fmt.Sprintf("Avg calls weekday=%.0f saturday=%.0f sunday=%.0f\n",
		d.AvgWeekday, d.AvgSaturday, d.AvgSunday))

	if len(d.Recent) > 0 {
		sb.WriteString("\n")
	}
	for _, p := range d.Recent {
		sb.WriteString(fmt.Sprintf("%s : calls=%d aht=%.0fs sl=%s%% agents=%d\n",
			models.DateKey(p.Date), p.Calls, p.AHT, formatFloat(p.SL, 1), p.Agents))
	}
	return sb.String()
}

// FormatDashboardJSON returns the JSON representation of the dashboard
func FormatDashboardJSON(d *models.Dashboard) string {
	return marshal(d)
}

// FormatDashboardCSV returns the recent series as CSV
func FormatDashboardCSV(d *models.Dashboard) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"Date", "Calls", "AHT", "SL", "Agents"})
	for _, p := range d.Recent {
		writer.Write([]string{
			models.DateKey(p.Date),
			strconv.Itoa(p.Calls),
			formatFloat(p.AHT, 0),
			formatFloat(p.SL, 2),
			strconv.Itoa(p.Agents),
		})
	}

	writer.Flush()
	return sb.String()
}

func marshal(v any) string {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ")
	return string(jsonBytes)
}

// formatFloat prints f with at most prec decimals and no trailing zeros.
func formatFloat(f float64, prec int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(roundTo(f, prec), 'f', -1, 64)
}

func roundTo(f float64, prec int) float64 {
	p := math.Pow(10, float64(prec))
	return math.Round(f*p) / p
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// FormatHistoryText returns one line per stored record.
func FormatHistoryText(recs []models.HistoricalRecord) string {
	if len(recs) == 0 {
		return "No records\n"
	}

	var sb strings.Builder
	for _, rec := range recs {
		sb.WriteString(fmt.Sprintf("%s %s : calls=%d agents=%d aht=%ss talk=%sh sl=%s%%\n",
			models.DateKey(rec.Date), rec.Date.Weekday().String()[:3],
			rec.Calls, rec.Agents, formatFloat(rec.ResolvedAHT(), 1),
			formatFloat(rec.TalkTime, 2), formatFloat(rec.SL, 1)))
	}
	return sb.String()
}

// FormatHistoryJSON returns the JSON representation of the records
func FormatHistoryJSON(recs []models.HistoricalRecord) string {
	if recs == nil {
		recs = []models.HistoricalRecord{}
	}
	return marshal(recs)
}

// FormatHistoryCSV returns the records in the import column layout
func FormatHistoryCSV(recs []models.HistoricalRecord) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"Date", "Calls", "Agents", "AHT", "TalkTime", "SL"})
	for _, rec := range recs {
		writer.Write([]string{
			models.DateKey(rec.Date),
			strconv.Itoa(rec.Calls),
			strconv.Itoa(rec.Agents),
			formatFloat(rec.AHT, 2),
			formatFloat(rec.TalkTime, 2),
			formatFloat(rec.SL, 2),
		})
	}

	writer.Flush()
	return sb.String()
}
