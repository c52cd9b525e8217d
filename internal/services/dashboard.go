package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"sales-dashboard/internal/aggregate"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

type FilterState struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
}

func NewFilterState(spec filter.Spec) FilterState {
	return FilterState{
		Regions:    spec.Regions(),
		Categories: spec.Categories(),
		Start:      spec.Start().Format(filter.DateLayout),
		End:        spec.End().Format(filter.DateLayout),
	}
}

type FilterOptions struct {
	Regions    []string    `json:"regions"`
	Categories []string    `json:"categories"`
	MinDate    string      `json:"min_date"`
	MaxDate    string      `json:"max_date"`
	Defaults   FilterState `json:"defaults"`
}

// View is everything the presentation layer needs for one filter selection.
type View struct {
	Filters     FilterState        `json:"filters"`
	RecordCount int                `json:"record_count"`
	KPIs        models.KPIBundle   `json:"kpis"`
	Formatted   FormattedKPIs      `json:"formatted"`
	Trend       models.Series      `json:"trend"`
	Monthly     models.Series      `json:"monthly"`
	Regions     models.Series      `json:"regions"`
	Categories  models.Series      `json:"categories"`
	Scatter     models.ScatterSet  `json:"scatter"`
	Narrative   insights.Narrative `json:"narrative"`
}

// Dashboard renders views over one immutable dataset. It holds no
// per-request state, so a single instance serves every session.
type Dashboard struct {
	dataset  *dataset.Dataset
	texts    insights.Texts
	logger   *slog.Logger
	loadedAt time.Time
	renders  atomic.Int64
}

func NewDashboard(ds *dataset.Dataset, texts insights.Texts, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		dataset:  ds,
		texts:    texts,
		logger:   logger,
		loadedAt: time.Now(),
	}
}

// Defaults is the initial selection: every region and category over the
// full date range.
func (d *Dashboard) Defaults() filter.Spec {
	return filter.Defaults(d.dataset)
}

func (d *Dashboard) Options() FilterOptions {
	minDate, maxDate := d.dataset.DateRange()
	return FilterOptions{
		Regions:    d.dataset.Regions(),
		Categories: d.dataset.Categories(),
		MinDate:    minDate.Format(filter.DateLayout),
		MaxDate:    maxDate.Format(filter.DateLayout),
		Defaults:   NewFilterState(d.Defaults()),
	}
}

// Render runs the full filter, aggregate and insight pass for spec.
func (d *Dashboard) Render(ctx context.Context, spec filter.Spec) (*View, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.render")
	logger := observability.LoggerFrom(ctx, d.logger)
	defer span.End(ctx, logger)

	view, err := d.render(ctx, spec)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	d.renders.Add(1)
	span.SetTag("records", strconv.Itoa(view.RecordCount))
	return view, nil
}

func (d *Dashboard) render(ctx context.Context, spec filter.Spec) (*View, error) {
	filtered := filter.Apply(d.dataset, spec)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	kpis := aggregate.Summarize(filtered)
	view := &View{
		Filters:     NewFilterState(spec),
		RecordCount: filtered.Len(),
		KPIs:        kpis,
		Formatted:   formatKPIs(kpis),
		Trend:       aggregate.DailyTotals(filtered),
		Monthly:     aggregate.MonthlyTotals(filtered),
		Regions:     aggregate.GroupBy(filtered, aggregate.ByRegion),
		Categories:  aggregate.GroupBy(filtered, aggregate.ByCategory),
		Scatter:     aggregate.Scatter(filtered),
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	view.Narrative = insights.Build(view.Regions, view.Categories, d.texts)
	return view, nil
}

func (d *Dashboard) Stats() map[string]any {
	minDate, maxDate := d.dataset.DateRange()
	return map[string]any{
		"record_count": d.dataset.Len(),
		"regions":      len(d.dataset.Regions()),
		"categories":   len(d.dataset.Categories()),
		"min_date":     minDate.Format(filter.DateLayout),
		"max_date":     maxDate.Format(filter.DateLayout),
		"loaded_at":    d.loadedAt,
		"renders":      d.renders.Load(),
	}
}
