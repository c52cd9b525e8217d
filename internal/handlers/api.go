package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
)

type APIHandlers struct {
	dashboard     *services.Dashboard
	sessions      *session.Store
	logger        *slog.Logger
	renderTimeout time.Duration
}

func NewAPIHandlers(dashboard *services.Dashboard, sessions *session.Store, logger *slog.Logger, renderTimeout time.Duration) *APIHandlers {
	return &APIHandlers{
		dashboard:     dashboard,
		sessions:      sessions,
		logger:        logger,
		renderTimeout: renderTimeout,
	}
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, h.dashboard.Options(), headers)
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	spec, err := specFromQuery(r.URL.Query(), h.dashboard.Defaults())
	if err != nil {
		errors.WriteError(w, h.logger, errors.ValidationWrap(err, "Invalid filter parameters"), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.renderTimeout)
	defer cancel()

	view, err := h.dashboard.Render(ctx, spec)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccess(w, view)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.dashboard.Stats()
	stats["sessions"] = h.sessions.Len()

	errors.WriteSuccess(w, stats)
}
