// Package insights picks the leading facet values out of grouped totals and
// turns them into the dashboard's narrative.
package insights

import (
	"errors"

	"sales-dashboard/internal/models"
)

// ErrEmptyInput is returned when a selection is made over an empty series,
// typically because the current filters matched no rows.
var ErrEmptyInput = errors.New("insights: empty input")

// TopKey returns the key with the largest value. Ties go to the bucket that
// appears first.
func TopKey(series models.Series) (string, error) {
	if len(series) == 0 {
		return "", ErrEmptyInput
	}

	top := series[0]
	for _, b := range series[1:] {
		if b.Value > top.Value {
			top = b
		}
	}
	return top.Key, nil
}
