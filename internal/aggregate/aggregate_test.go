package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleDataset() *dataset.Dataset {
	return dataset.New([]models.Record{
		{OrderDate: day(2023, 1, 5), Region: "West", Category: "Tech", Sales: 100, Profit: 20, Discount: 0.1},
		{OrderDate: day(2023, 2, 10), Region: "East", Category: "Tech", Sales: 200, Profit: 50, Discount: 0.0},
		{OrderDate: day(2023, 2, 15), Region: "West", Category: "Office", Sales: 50, Profit: -10, Discount: 0.2},
	})
}

func allSpec() filter.Spec {
	return filter.New([]string{"West", "East"}, []string{"Tech", "Office"}, day(2023, 1, 1), day(2023, 2, 28))
}

func TestSummarize_FullSelection(t *testing.T) {
	view := filter.Apply(sampleDataset(), allSpec())

	kpis := Summarize(view)

	assert.InDelta(t, 350.0, kpis.Revenue, 1e-9)
	assert.InDelta(t, 60.0, kpis.Profit, 1e-9)
	assert.InDelta(t, 17.142857, kpis.MarginPct, 1e-5)
	assert.InDelta(t, 150.0, kpis.GrowthPct, 1e-9)
}

func TestSummarize_SingleRegion(t *testing.T) {
	spec := filter.New([]string{"East"}, []string{"Tech", "Office"}, day(2023, 1, 1), day(2023, 2, 28))
	view := filter.Apply(sampleDataset(), spec)
	require.Equal(t, 1, view.Len())

	kpis := Summarize(view)

	assert.InDelta(t, 200.0, kpis.Revenue, 1e-9)
	assert.InDelta(t, 50.0, kpis.Profit, 1e-9)
	assert.InDelta(t, 25.0, kpis.MarginPct, 1e-9)
	assert.Zero(t, kpis.GrowthPct)
	assert.Len(t, MonthlyTotals(view), 1)
}

func TestSummarize_EmptyView(t *testing.T) {
	reversed := filter.New([]string{"West", "East"}, []string{"Tech", "Office"}, day(2023, 2, 28), day(2023, 1, 1))
	view := filter.Apply(sampleDataset(), reversed)

	assert.Equal(t, models.KPIBundle{}, Summarize(view))
	assert.Empty(t, MonthlyTotals(view))
	assert.Empty(t, DailyTotals(view))
	assert.Empty(t, GroupBy(view, ByRegion))
}

func TestSummarize_ZeroRevenue(t *testing.T) {
	view := filter.View{Records: []models.Record{
		{OrderDate: day(2023, 1, 1), Region: "West", Category: "Tech", Sales: 0, Profit: -5},
	}}

	kpis := Summarize(view)

	assert.Zero(t, kpis.Revenue)
	assert.InDelta(t, -5.0, kpis.Profit, 1e-9)
	assert.Zero(t, kpis.MarginPct)
}

func TestSummarize_ExactCents(t *testing.T) {
	records := make([]models.Record, 10)
	for i := range records {
		records[i] = models.Record{OrderDate: day(2023, 1, 1), Sales: 0.1, Profit: 0.01}
	}

	kpis := Summarize(filter.View{Records: records})

	assert.Equal(t, 1.0, kpis.Revenue)
	assert.Equal(t, 0.1, kpis.Profit)
	assert.Equal(t, 10.0, kpis.MarginPct)
}

func TestMonthlyTotals(t *testing.T) {
	view := filter.Apply(sampleDataset(), allSpec())

	assert.Equal(t, models.Series{
		{Key: "2023-01", Value: 100},
		{Key: "2023-02", Value: 250},
	}, MonthlyTotals(view))
}

func TestMonthlyTotals_ZeroFillsGapsAndSorts(t *testing.T) {
	view := filter.View{Records: []models.Record{
		{OrderDate: day(2023, 4, 2), Sales: 40},
		{OrderDate: day(2022, 12, 31), Sales: 10},
		{OrderDate: day(2023, 2, 1), Sales: 20},
	}}

	assert.Equal(t, models.Series{
		{Key: "2022-12", Value: 10},
		{Key: "2023-01", Value: 0},
		{Key: "2023-02", Value: 20},
		{Key: "2023-03", Value: 0},
		{Key: "2023-04", Value: 40},
	}, MonthlyTotals(view))
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name   string
		series models.Series
		want   float64
	}{
		{"empty", models.Series{}, 0},
		{"single bucket", models.Series{{Key: "2023-01", Value: 100}}, 0},
		{"increase", models.Series{{Value: 100}, {Value: 250}}, 150},
		{"decrease", models.Series{{Value: 10}, {Value: 200}, {Value: 150}}, -25},
		{"previous bucket zero", models.Series{{Value: 0}, {Value: 40}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Growth(tt.series), 1e-9)
		})
	}
}

func TestSummarize_GapMonthBeforeLastDoesNotDivideByZero(t *testing.T) {
	view := filter.View{Records: []models.Record{
		{OrderDate: day(2023, 1, 10), Sales: 100},
		{OrderDate: day(2023, 3, 10), Sales: 40},
	}}

	assert.Zero(t, Summarize(view).GrowthPct)
}

func TestGroupBy(t *testing.T) {
	view := filter.Apply(sampleDataset(), allSpec())

	regions := GroupBy(view, ByRegion)
	categories := GroupBy(view, ByCategory)

	assert.Equal(t, models.Series{{Key: "East", Value: 200}, {Key: "West", Value: 150}}, regions)
	assert.Equal(t, models.Series{{Key: "Office", Value: 50}, {Key: "Tech", Value: 300}}, categories)
	assert.InDelta(t, Summarize(view).Revenue, regions.Total(), 1e-9)
	assert.InDelta(t, Summarize(view).Revenue, categories.Total(), 1e-9)
}

func TestGroupBy_OnlyKeysInView(t *testing.T) {
	spec := filter.New([]string{"West"}, []string{"Office"}, day(2023, 1, 1), day(2023, 12, 31))
	view := filter.Apply(sampleDataset(), spec)

	regions := GroupBy(view, ByRegion)

	assert.Equal(t, []string{"West"}, regions.Keys())
	_, ok := regions.Get("East")
	assert.False(t, ok)
}

func TestDailyTotals(t *testing.T) {
	view := filter.View{Records: []models.Record{
		{OrderDate: day(2023, 1, 2), Sales: 5},
		{OrderDate: day(2023, 1, 1), Sales: 1},
		{OrderDate: day(2023, 1, 2), Sales: 7},
	}}

	assert.Equal(t, models.Series{
		{Key: "2023-01-01", Value: 1},
		{Key: "2023-01-02", Value: 12},
	}, DailyTotals(view))
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey(" Region ")
	require.NoError(t, err)
	assert.Equal(t, ByRegion, k)

	k, err = ParseKey("category")
	require.NoError(t, err)
	assert.Equal(t, ByCategory, k)

	_, err = ParseKey("country")
	assert.Error(t, err)
}

func TestScatter(t *testing.T) {
	view := filter.View{Records: []models.Record{
		{Region: "West", Category: "Tech", Discount: 0.0, Profit: 30},
		{Region: "West", Category: "Tech", Discount: 0.1, Profit: 20},
		{Region: "East", Category: "Office", Discount: 0.2, Profit: 10},
	}}

	set := Scatter(view)

	require.Len(t, set.Points, 3)
	assert.Equal(t, "Office", set.Points[2].Category)
	assert.InDelta(t, -1.0, set.Correlation, 1e-9)
	assert.InDelta(t, -100.0, set.Slope, 1e-6)
	assert.InDelta(t, 30.0, set.Intercept, 1e-6)
}

func TestScatter_Degenerate(t *testing.T) {
	empty := Scatter(filter.View{})
	assert.NotNil(t, empty.Points)
	assert.Empty(t, empty.Points)
	assert.Zero(t, empty.Slope)

	single := Scatter(filter.View{Records: []models.Record{{Discount: 0.3, Profit: 12}}})
	assert.Len(t, single.Points, 1)
	assert.Zero(t, single.Correlation)
	assert.Equal(t, 12.0, single.Intercept)

	flat := Scatter(filter.View{Records: []models.Record{{Discount: 0.1, Profit: 10}, {Discount: 0.1, Profit: 20}}})
	assert.Zero(t, flat.Slope)
	assert.Zero(t, flat.Correlation)
	assert.InDelta(t, 15.0, flat.Intercept, 1e-9)
}

func TestAggregates_StayFiniteForHugeAmounts(t *testing.T) {
	ds := dataset.New([]models.Record{
		{OrderDate: day(2023, 1, 5), Region: "West", Category: "Tech", Sales: math.MaxFloat64, Profit: 1, Discount: 0},
		{OrderDate: day(2023, 1, 5), Region: "West", Category: "Tech", Sales: math.MaxFloat64, Profit: 2, Discount: 1},
		{OrderDate: day(2023, 2, 5), Region: "East", Category: "Tech", Sales: -math.MaxFloat64, Profit: 3, Discount: 0.5},
	})
	view := filter.Apply(ds, filter.Defaults(ds))

	kpis := Summarize(view)
	assert.Equal(t, math.MaxFloat64, kpis.Revenue)
	assert.False(t, math.IsInf(kpis.GrowthPct, 0) || math.IsNaN(kpis.GrowthPct))

	for _, series := range []models.Series{GroupBy(view, ByCategory), MonthlyTotals(view), DailyTotals(view)} {
		for _, b := range series {
			assert.False(t, math.IsInf(b.Value, 0), "bucket %s is infinite", b.Key)
		}
	}
	assert.Equal(t, -math.MaxFloat64, MonthlyTotals(view)[1].Value)
}

func TestScatter_HugeProfitsStayFinite(t *testing.T) {
	ds := dataset.New([]models.Record{
		{OrderDate: day(2023, 1, 5), Region: "West", Category: "Tech", Sales: 1, Profit: math.MaxFloat64, Discount: 0},
		{OrderDate: day(2023, 1, 6), Region: "West", Category: "Tech", Sales: 1, Profit: -math.MaxFloat64, Discount: 1},
		{OrderDate: day(2023, 1, 7), Region: "West", Category: "Tech", Sales: 1, Profit: math.MaxFloat64, Discount: 0.5},
	})

	set := Scatter(filter.Apply(ds, filter.Defaults(ds)))

	for _, v := range []float64{set.Correlation, set.Slope, set.Intercept} {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v), "got %v", v)
	}
}
