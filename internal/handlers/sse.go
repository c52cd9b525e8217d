package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
	"sales-dashboard/internal/ui/templates"
)

const (
	statusOK     = `<div id="status"></div>`
	statusFailed = `<div id="status" class="no-data">The dashboard could not be updated. Please try again.</div>`
)

type SSEHandlers struct {
	dashboard     *services.Dashboard
	sessions      *session.Store
	logger        *slog.Logger
	renderTimeout time.Duration
}

func NewSSEHandlers(dashboard *services.Dashboard, sessions *session.Store, logger *slog.Logger, renderTimeout time.Duration) *SSEHandlers {
	return &SSEHandlers{
		dashboard:     dashboard,
		sessions:      sessions,
		logger:        logger,
		renderTimeout: renderTimeout,
	}
}

// chartSignals carries the series behind the charts so the client can
// inspect them without another request.
type chartSignals struct {
	MonthlyData    models.Series `json:"monthlyData"`
	RegionsData    models.Series `json:"regionsData"`
	CategoriesData models.Series `json:"categoriesData"`
	RecordCount    int           `json:"recordCount"`
}

// HandleDashboard reads the filter signals, stores them as the session's
// selection and patches every dependent fragment.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFrom(r.Context(), h.logger)
	requestID := observability.GetRequestID(r.Context())

	var state services.FilterState
	if err := datastar.ReadSignals(r, &state); err != nil {
		errors.WriteError(w, h.logger, errors.ValidationWrap(err, "Invalid signals"), requestID)
		return
	}

	spec, err := specFromState(state, h.dashboard.Defaults())
	if err != nil {
		errors.WriteError(w, h.logger, errors.ValidationWrap(err, "Invalid filter selection"), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.renderTimeout)
	defer cancel()

	view, err := h.dashboard.Render(ctx, spec)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		logger.Error("render dashboard", "error", err)
		if err := sse.PatchElements(statusFailed); err != nil {
			logger.Warn("patch status", "error", err)
		}
		return
	}

	version := 0
	if sessionID := observability.GetSessionID(r.Context()); sessionID != "" {
		version = h.sessions.Put(sessionID, spec)
	}

	fragments := []struct {
		name      string
		component templ.Component
	}{
		{"kpis", templates.KPIs(view)},
		{"charts", templates.Charts(version)},
		{"insights", templates.Insights(view)},
	}
	for _, f := range fragments {
		if err := sse.PatchElementTempl(f.component); err != nil {
			logger.Warn("patch fragment", "fragment", f.name, "error", err)
			return
		}
	}

	signals, err := json.Marshal(chartSignals{
		MonthlyData:    view.Monthly,
		RegionsData:    view.Regions,
		CategoriesData: view.Categories,
		RecordCount:    view.RecordCount,
	})
	if err != nil {
		logger.Error("marshal chart signals", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		logger.Warn("patch signals", "error", err)
		return
	}

	if err := sse.PatchElements(statusOK); err != nil {
		logger.Warn("patch status", "error", err)
	}
}
