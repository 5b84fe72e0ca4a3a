// Package api exposes the analysis service as a JSON HTTP API on chi.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"aquacheck/app"
	"aquacheck/internal"
	"aquacheck/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 10 << 20

// Handler serves the JSON API
type Handler struct {
	analysis *app.AnalysisService
	batch    *app.BatchService
	registry ports.ModelRegistry
	logger   *internal.Logger
}

// NewHandler creates the API handler. registry may be nil when no database
// is configured.
func NewHandler(analysis *app.AnalysisService, batch *app.BatchService, registry ports.ModelRegistry, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{
		analysis: analysis,
		batch:    batch,
		registry: registry,
		logger:   logger.With("API"),
	}
}

// Routes builds the router. It is mounted under /api by the web server.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/predict", h.handlePredict)
		r.Post("/batch", h.handleBatch)
		r.Get("/schema", h.handleSchema)
		r.Get("/model", h.handleModel)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		internal.DefaultLogger.Error("failed to encode response: %v", err)
	}
}
