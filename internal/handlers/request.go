package handlers

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/services"
)

// specFromQuery reads a selection from query parameters. Facets are
// repeated parameters, one value each. A parameter that is absent falls
// back to the default selection, while region= with no value selects
// nothing.
func specFromQuery(q url.Values, defaults filter.Spec) (filter.Spec, error) {
	state := services.FilterState{
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
	if values, ok := q["region"]; ok {
		state.Regions = facetValues(values)
	}
	if values, ok := q["category"]; ok {
		state.Categories = facetValues(values)
	}
	return specFromState(state, defaults)
}

// specFromState converts client filter state into a Spec. Nil facets and
// blank dates take their default; an empty non-nil facet selects nothing.
func specFromState(state services.FilterState, defaults filter.Spec) (filter.Spec, error) {
	regions := state.Regions
	if regions == nil {
		regions = defaults.Regions()
	}
	categories := state.Categories
	if categories == nil {
		categories = defaults.Categories()
	}

	start, err := parseDate("start", state.Start, defaults.Start())
	if err != nil {
		return filter.Spec{}, err
	}
	end, err := parseDate("end", state.End, defaults.End())
	if err != nil {
		return filter.Spec{}, err
	}

	return filter.New(regions, categories, start, end), nil
}

func parseDate(name, value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(filter.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s date %q must be formatted as YYYY-MM-DD", name, value)
	}
	return t, nil
}

func facetValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
