// Package filter selects the records of a dataset that match a user's facet
// and date-range selection.
package filter

import (
	"slices"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

const DateLayout = "2006-01-02"

// Spec is an immutable filter selection. A new Spec replaces the previous
// one on every interaction.
type Spec struct {
	regions    map[string]struct{}
	categories map[string]struct{}
	start      time.Time
	end        time.Time
}

// New builds a Spec. Dates are truncated to calendar days and both ends of
// the interval are inclusive.
func New(regions, categories []string, start, end time.Time) Spec {
	return Spec{
		regions:    toSet(regions),
		categories: toSet(categories),
		start:      dataset.Day(start),
		end:        dataset.Day(end),
	}
}

// Defaults selects every region and category present in ds over its full
// date range.
func Defaults(ds *dataset.Dataset) Spec {
	start, end := ds.DateRange()
	return New(ds.Regions(), ds.Categories(), start, end)
}

// Regions returns the selected regions, sorted.
func (s Spec) Regions() []string {
	return sortedKeys(s.regions)
}

// Categories returns the selected categories, sorted.
func (s Spec) Categories() []string {
	return sortedKeys(s.categories)
}

func (s Spec) Start() time.Time { return s.start }
func (s Spec) End() time.Time   { return s.end }

// Empty reports whether no record can match s.
func (s Spec) Empty() bool {
	return len(s.regions) == 0 || len(s.categories) == 0 || s.start.After(s.end)
}

// Match reports whether r satisfies every predicate of s.
func (s Spec) Match(r models.Record) bool {
	_, regionOK := s.regions[r.Region]
	_, categoryOK := s.categories[r.Category]
	d := dataset.Day(r.OrderDate)
	inRange := !d.Before(s.start) && !d.After(s.end)
	return regionOK && categoryOK && inRange
}

// View is the ordered subset of a dataset that matched a Spec.
type View struct {
	Records []models.Record
}

func (v View) Len() int {
	return len(v.Records)
}

// Apply returns the records of ds that satisfy spec, in dataset order. A
// reversed date interval or an empty facet set yields an empty view.
func Apply(ds *dataset.Dataset, spec Spec) View {
	if spec.Empty() {
		return View{Records: []models.Record{}}
	}
	return View{Records: ds.Select(spec.Match)}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
