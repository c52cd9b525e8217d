package dataset

import (
	"fmt"
	"strings"
)

type column int

const (
	colDate column = iota
	colRegion
	colCategory
	colSales
	colProfit
	colDiscount
	numColumns
)

var columnNames = [numColumns]string{
	colDate:     "Order Date",
	colRegion:   "Region",
	colCategory: "Category",
	colSales:    "Sales",
	colProfit:   "Profit",
	colDiscount: "Discount",
}

// Secondary header spellings, consulted only when the canonical name is absent.
var columnAliases = map[string]column{
	"date":        colDate,
	"orderdt":     colDate,
	"salesamount": colSales,
	"amount":      colSales,
	"revenue":     colSales,
}

func (c column) String() string {
	return columnNames[c]
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, h)
}

// mapColumns resolves the position of every required column in header.
func mapColumns(header []string) ([numColumns]int, error) {
	var idx [numColumns]int
	for i := range idx {
		idx[i] = -1
	}

	canonical := make(map[string]column, numColumns)
	for c := column(0); c < numColumns; c++ {
		canonical[normalizeHeader(columnNames[c])] = c
	}

	for i, h := range header {
		if c, ok := canonical[normalizeHeader(h)]; ok && idx[c] < 0 {
			idx[c] = i
		}
	}
	for i, h := range header {
		if c, ok := columnAliases[normalizeHeader(h)]; ok && idx[c] < 0 {
			idx[c] = i
		}
	}

	var missing []string
	for c := column(0); c < numColumns; c++ {
		if idx[c] < 0 {
			missing = append(missing, c.String())
		}
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}
