// Package aggregate computes KPIs and grouped totals over a filtered view.
//
// Every entry point treats an empty view as degenerate input and returns
// the defined zero result instead of dividing by zero or failing.
package aggregate

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/models"
)

const MonthLayout = "2006-01"

var hundred = decimal.NewFromInt(100)

// Key names a categorical column to group by.
type Key string

const (
	ByRegion   Key = "region"
	ByCategory Key = "category"
)

func ParseKey(s string) (Key, error) {
	switch k := Key(strings.ToLower(strings.TrimSpace(s))); k {
	case ByRegion, ByCategory:
		return k, nil
	default:
		return "", fmt.Errorf("unknown group key %q", s)
	}
}

func (k Key) value(r models.Record) string {
	if k == ByCategory {
		return r.Category
	}
	return r.Region
}

// Summarize returns revenue, profit, margin and month-over-month growth.
func Summarize(view filter.View) models.KPIBundle {
	if view.Len() == 0 {
		return models.KPIBundle{}
	}

	var revenue, profit decimal.Decimal
	for _, r := range view.Records {
		revenue = revenue.Add(decimal.NewFromFloat(r.Sales))
		profit = profit.Add(decimal.NewFromFloat(r.Profit))
	}

	return models.KPIBundle{
		Revenue:   toFloat(revenue),
		Profit:    toFloat(profit),
		MarginPct: percentOf(profit, revenue),
		GrowthPct: Growth(MonthlyTotals(view)),
	}
}

// Growth is the percent change between the last two buckets of a
// chronological series. It is 0 with fewer than two buckets or when the
// earlier bucket is 0.
func Growth(monthly models.Series) float64 {
	n := len(monthly)
	if n < 2 {
		return 0
	}
	prev := decimal.NewFromFloat(monthly[n-2].Value)
	last := decimal.NewFromFloat(monthly[n-1].Value)
	return percentOf(last.Sub(prev), prev)
}

// GroupBy sums sales per distinct key value in view, ordered by key. Keys
// absent from the view are omitted.
func GroupBy(view filter.View, key Key) models.Series {
	if view.Len() == 0 {
		return models.Series{}
	}

	sums := make(map[string]decimal.Decimal)
	for _, r := range view.Records {
		k := key.value(r)
		sums[k] = sums[k].Add(decimal.NewFromFloat(r.Sales))
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	series := make(models.Series, len(keys))
	for i, k := range keys {
		series[i] = models.Bucket{Key: k, Value: toFloat(sums[k])}
	}
	return series
}

// MonthlyTotals sums sales per calendar month in chronological order.
// Months between the first and last bucket with no sales appear with 0.
func MonthlyTotals(view filter.View) models.Series {
	if view.Len() == 0 {
		return models.Series{}
	}

	sums := make(map[time.Time]decimal.Decimal)
	var first, last time.Time
	for i, r := range view.Records {
		m := monthStart(r.OrderDate)
		sums[m] = sums[m].Add(decimal.NewFromFloat(r.Sales))
		if i == 0 || m.Before(first) {
			first = m
		}
		if i == 0 || m.After(last) {
			last = m
		}
	}

	var series models.Series
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		series = append(series, models.Bucket{
			Key:   m.Format(MonthLayout),
			Value: toFloat(sums[m]),
		})
	}
	return series
}

// DailyTotals sums sales per order date in chronological order. Days without
// sales are omitted.
func DailyTotals(view filter.View) models.Series {
	if view.Len() == 0 {
		return models.Series{}
	}

	sums := make(map[time.Time]decimal.Decimal)
	for _, r := range view.Records {
		d := dataset.Day(r.OrderDate)
		sums[d] = sums[d].Add(decimal.NewFromFloat(r.Sales))
	}

	days := make([]time.Time, 0, len(sums))
	for d := range sums {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	series := make(models.Series, len(days))
	for i, d := range days {
		series[i] = models.Bucket{Key: d.Format(filter.DateLayout), Value: toFloat(sums[d])}
	}
	return series
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// percentOf returns part/whole*100, or 0 when whole is 0.
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return toFloat(part.Div(whole).Mul(hundred))
}

// toFloat converts d to float64, saturating at ±math.MaxFloat64 so sums of
// very large amounts stay finite.
func toFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return math.Copysign(math.MaxFloat64, f)
	}
	return f
}
