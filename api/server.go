/*
server.go - HTTP router and middleware configuration

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboards

ROUTES:
  GET    /api/forecast           Forecast (?from ?to ?days ?sl ?format)
  GET    /api/analysis           Day-of-month gap report (?sl ?format)
  GET    /api/dashboard          Historical KPIs
  GET    /api/history            All records
  DELETE /api/history            Clear all records
  GET    /api/history/{date}     One record
  PUT    /api/history/{date}     Merge a partial record
  DELETE /api/history/{date}     Remove one record
  POST   /api/import             CSV or XLSX upload
  GET    /metrics                Prometheus metrics
  GET    /healthz                Liveness

SECURITY NOTE:
  No authentication middleware. Bind to a private address.
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wfm-planner/metrics"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/forecast", h.GetForecast)
		r.Get("/analysis", h.GetAnalysis)
		r.Get("/dashboard", h.GetDashboard)
		r.Post("/import", h.Import)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.ListHistory)
			r.Delete("/", h.ClearHistory)
			r.Get("/{date}", h.GetRecord)
			r.Put("/{date}", h.PutRecord)
			r.Delete("/{date}", h.DeleteRecord)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
