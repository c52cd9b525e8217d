package services

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-dashboard/internal/models"
)

var printer = message.NewPrinter(language.English)

type FormattedKPIs struct {
	Revenue string `json:"total_revenue"`
	Profit  string `json:"total_profit"`
	Margin  string `json:"profit_margin"`
	Growth  string `json:"monthly_growth"`
}

// FormatCurrency renders whole dollars with thousands separators, e.g. $1,234.
func FormatCurrency(v float64) string {
	return "$" + printer.Sprintf("%.0f", v)
}

// FormatPercent renders v with two decimals, e.g. 17.14%.
func FormatPercent(v float64) string {
	return printer.Sprintf("%.2f%%", v)
}

func formatKPIs(k models.KPIBundle) FormattedKPIs {
	return FormattedKPIs{
		Revenue: FormatCurrency(k.Revenue),
		Profit:  FormatCurrency(k.Profit),
		Margin:  FormatPercent(k.MarginPct),
		Growth:  FormatPercent(k.GrowthPct),
	}
}
