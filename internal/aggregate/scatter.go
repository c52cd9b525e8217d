package aggregate

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/models"
)

// Scatter pairs each record's discount with its profit and fits a least
// squares trend line through the points.
func Scatter(view filter.View) models.ScatterSet {
	set := models.ScatterSet{Points: make([]models.ScatterPoint, 0, view.Len())}
	if view.Len() == 0 {
		return set
	}

	discounts := make([]float64, view.Len())
	profits := make([]float64, view.Len())
	for i, r := range view.Records {
		set.Points = append(set.Points, models.ScatterPoint{
			Discount: r.Discount,
			Profit:   r.Profit,
			Category: r.Category,
			Region:   r.Region,
		})
		discounts[i] = r.Discount
		profits[i] = r.Profit
	}

	if view.Len() < 2 {
		set.Intercept = profits[0]
		return set
	}

	if corr, err := stats.Correlation(discounts, profits); err == nil && finite(corr) {
		set.Correlation = corr
	}

	if variance := stat.Variance(discounts, nil); variance == 0 || !finite(variance) {
		if mean := stat.Mean(profits, nil); finite(mean) {
			set.Intercept = mean
		}
		return set
	}
	intercept, slope := stat.LinearRegression(discounts, profits, nil, false)
	if finite(intercept) && finite(slope) {
		set.Intercept, set.Slope = intercept, slope
	}
	return set
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
