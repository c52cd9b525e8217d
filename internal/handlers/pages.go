package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
	"sales-dashboard/internal/ui/templates"
)

type PageHandlers struct {
	dashboard     *services.Dashboard
	sessions      *session.Store
	logger        *slog.Logger
	renderTimeout time.Duration
}

func NewPageHandlers(dashboard *services.Dashboard, sessions *session.Store, logger *slog.Logger, renderTimeout time.Duration) *PageHandlers {
	return &PageHandlers{
		dashboard:     dashboard,
		sessions:      sessions,
		logger:        logger,
		renderTimeout: renderTimeout,
	}
}

// currentSpec returns the session's stored selection, or the default one
// for sessions that have not filtered anything yet.
func (h *PageHandlers) currentSpec(ctx context.Context) (filter.Spec, int) {
	if sessionID := observability.GetSessionID(ctx); sessionID != "" {
		if spec, version, ok := h.sessions.Get(sessionID); ok {
			return spec, version
		}
	}
	return h.dashboard.Defaults(), 0
}

func (h *PageHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.renderTimeout)
	defer cancel()

	spec, version := h.currentSpec(ctx)
	view, err := h.dashboard.Render(ctx, spec)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	var buf bytes.Buffer
	if err := templates.Dashboard(h.dashboard.Options(), view, version).Render(ctx, &buf); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to render dashboard"), requestID)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

// HandleChart draws one chart as PNG. Query parameters, when given,
// override the session's selection.
func (h *PageHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	kind, err := charts.ParseKind(r.PathValue("name"))
	if err != nil {
		errors.WriteError(w, h.logger, errors.NotFound(err.Error()), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.renderTimeout)
	defer cancel()

	spec, _ := h.currentSpec(ctx)
	if q := r.URL.Query(); hasFilterParams(q) {
		if spec, err = specFromQuery(q, h.dashboard.Defaults()); err != nil {
			errors.WriteError(w, h.logger, errors.ValidationWrap(err, "Invalid filter parameters"), requestID)
			return
		}
	}

	view, err := h.dashboard.Render(ctx, spec)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	var buf bytes.Buffer
	if err := charts.WritePNG(&buf, kind, view); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to draw chart"), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=60")
	buf.WriteTo(w)
}

func hasFilterParams(q map[string][]string) bool {
	for _, key := range []string{"region", "category", "start", "end"} {
		if _, ok := q[key]; ok {
			return true
		}
	}
	return false
}
