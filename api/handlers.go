package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wfm-planner/errors"
	"wfm-planner/formatter"
	"wfm-planner/models"
	"wfm-planner/planner"
	"wfm-planner/store"
)

// maxUploadBytes bounds an import body.
const maxUploadBytes = 32 << 20

// Defaults apply when a request omits the range or target.
type Defaults struct {
	Range    models.DateRange
	TargetSL float64
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner  *planner.Planner
	Store    store.Store
	Defaults Defaults
}

// NewHandler creates a new handler.
func NewHandler(p *planner.Planner, st store.Store, defaults Defaults) *Handler {
	return &Handler{Planner: p, Store: st, Defaults: defaults}
}

// =============================================================================
// ENGINE HANDLERS
// =============================================================================

// GetForecast returns the forecast for ?from, ?to or ?days at ?sl.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := 0
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid days", err)
			return
		}
		days = n
	}
	rng, err := models.ResolveRange(h.Defaults.Range, q.Get("from"), q.Get("to"), days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}
	sl, ok := h.targetSL(w, r)
	if !ok {
		return
	}

	f, err := h.Planner.Forecast(r.Context(), rng, sl)
	if err != nil {
		writeEngineError(w, "Failed to generate forecast", err)
		return
	}

	switch q.Get("format") {
	case formatter.CSV:
		writeText(w, "text/csv", formatter.FormatForecastCSV(f))
	case formatter.Text:
		writeText(w, "text/plain; charset=utf-8", formatter.FormatForecastText(f))
	default:
		writeJSON(w, http.StatusOK, f)
	}
}

// GetAnalysis returns the day-of-month gap report at ?sl.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	sl, ok := h.targetSL(w, r)
	if !ok {
		return
	}

	report, err := h.Planner.Analyze(r.Context(), sl)
	if err != nil {
		writeEngineError(w, "Failed to analyze history", err)
		return
	}

	switch r.URL.Query().Get("format") {
	case formatter.CSV:
		writeText(w, "text/csv", formatter.FormatGapCSV(report))
	case formatter.Text:
		writeText(w, "text/plain; charset=utf-8", formatter.FormatGapText(report))
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

// GetDashboard returns historical KPIs.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Planner.Dashboard(r.Context())
	if err != nil {
		writeEngineError(w, "Failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// ListHistory returns all records ordered by date.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	history, err := store.Snapshot(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history", err)
		return
	}

	dtos := make([]RecordDTO, 0, history.Len())
	for _, rec := range history.Records() {
		dtos = append(dtos, toRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRecord returns the record for {date}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	rec, found, err := h.Store.Get(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get record", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// PutRecord merges a JSON patch into the record for {date}.
func (h *Handler) PutRecord(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	var patch models.RecordPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "Invalid request body", errors.ErrEmptyPatch)
		return
	}

	ctx := r.Context()
	if err := h.Store.Put(ctx, date, patch); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save record", err)
		return
	}
	rec, _, err := h.Store.Get(ctx, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// DeleteRecord removes the record for {date}.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), date); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearHistory removes every record.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import merges an uploaded CSV or XLSX body into the history. The format
// comes from ?filename, else from the Content-Type.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "upload.csv"
		if strings.Contains(r.Header.Get("Content-Type"), "spreadsheetml") {
			name = "upload.xlsx"
		}
	}

	body := io.LimitReader(r.Body, maxUploadBytes)
	report, err := h.Planner.Import(r.Context(), body, name)
	if err != nil {
		writeEngineError(w, "Failed to import file", err)
		return
	}

	resp := ImportResponse{
		BatchID:  report.BatchID,
		Imported: report.Imported,
		Skipped:  report.Skipped,
		Columns:  report.Columns,
	}
	for _, e := range report.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) targetSL(w http.ResponseWriter, r *http.Request) (float64, bool) {
	v := r.URL.Query().Get("sl")
	if v == "" {
		return h.Defaults.TargetSL, true
	}
	sl, err := strconv.ParseFloat(v, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid service level", err)
		return 0, false
	}
	return sl, true
}

func dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := models.ParseDateKey(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return time.Time{}, false
	}
	return date, true
}

// writeJSON encodes before writing the header. Unencodable values become
// a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "{\"error\":\"Failed to encode response\",\"details\":%q}\n", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps caller mistakes to 400 and everything else to 500.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	for _, target := range []error{
		errors.ErrInvalidDateRange, errors.ErrInvalidTargetSL, errors.ErrInvalidDateKey,
		errors.ErrMissingDate, errors.ErrInvalidDate, errors.ErrNoDateColumn,
		errors.ErrNoFieldsRecognized, errors.ErrEmptySheet, errors.ErrUnsupportedFormat,
		errors.ErrUnreadableInput,
	} {
		if stderrors.Is(err, target) {
			status = http.StatusBadRequest
			break
		}
	}
	writeError(w, status, message, err)
}
