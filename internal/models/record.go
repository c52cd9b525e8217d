package models

import "time"

// Record is one sales row. Records are never modified after load.
type Record struct {
	OrderDate time.Time `json:"order_date"`
	Region    string    `json:"region"`
	Category  string    `json:"category"`
	Sales     float64   `json:"sales"`
	Profit    float64   `json:"profit"`
	Discount  float64   `json:"discount"`
}

type KPIBundle struct {
	Revenue   float64 `json:"total_revenue"`
	Profit    float64 `json:"total_profit"`
	MarginPct float64 `json:"profit_margin_pct"`
	GrowthPct float64 `json:"monthly_growth_pct"`
}

type Bucket struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Series is a grouped aggregate. Time series are kept in chronological
// order; facet series are ordered by key.
type Series []Bucket

func (s Series) Total() float64 {
	var total float64
	for _, b := range s {
		total += b.Value
	}
	return total
}

func (s Series) Get(key string) (float64, bool) {
	for _, b := range s {
		if b.Key == key {
			return b.Value, true
		}
	}
	return 0, false
}

func (s Series) Keys() []string {
	keys := make([]string, len(s))
	for i, b := range s {
		keys[i] = b.Key
	}
	return keys
}

type ScatterPoint struct {
	Discount float64 `json:"discount"`
	Profit   float64 `json:"profit"`
	Category string  `json:"category"`
	Region   string  `json:"region"`
}

type ScatterSet struct {
	Points      []ScatterPoint `json:"points"`
	Correlation float64        `json:"correlation"`
	Slope       float64        `json:"slope"`
	Intercept   float64        `json:"intercept"`
}
