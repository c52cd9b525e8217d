package dataset

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"sales-dashboard/internal/models"
)

// Dataset is the in-memory sales table. It is immutable after construction
// and safe to share between goroutines.
type Dataset struct {
	records    []models.Record
	regions    []string
	categories []string
	minDate    time.Time
	maxDate    time.Time
}

// New builds a Dataset from a copy of records.
func New(records []models.Record) *Dataset {
	d := &Dataset{records: slices.Clone(records)}

	d.regions = lo.Uniq(lo.Map(d.records, func(r models.Record, _ int) string { return r.Region }))
	d.categories = lo.Uniq(lo.Map(d.records, func(r models.Record, _ int) string { return r.Category }))

	for i, r := range d.records {
		if i == 0 || r.OrderDate.Before(d.minDate) {
			d.minDate = r.OrderDate
		}
		if i == 0 || r.OrderDate.After(d.maxDate) {
			d.maxDate = r.OrderDate
		}
	}
	return d
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of every record in load order.
func (d *Dataset) Records() []models.Record {
	return slices.Clone(d.records)
}

// Select returns, in load order, a fresh slice of the records that satisfy keep.
func (d *Dataset) Select(keep func(models.Record) bool) []models.Record {
	return lo.Filter(d.records, func(r models.Record, _ int) bool { return keep(r) })
}

// Regions lists distinct regions in first-seen order.
func (d *Dataset) Regions() []string {
	return slices.Clone(d.regions)
}

// Categories lists distinct categories in first-seen order.
func (d *Dataset) Categories() []string {
	return slices.Clone(d.categories)
}

// DateRange returns the earliest and latest order dates. Both are zero for an
// empty dataset.
func (d *Dataset) DateRange() (time.Time, time.Time) {
	return d.minDate, d.maxDate
}
