// Package charts draws the dashboard's charts as PNG images.
package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

type Kind string

const (
	Trend    Kind = "trend"
	Monthly  Kind = "monthly"
	Region   Kind = "region"
	Category Kind = "category"
	Scatter  Kind = "scatter"
)

var Kinds = []Kind{Trend, Monthly, Region, Category, Scatter}

const (
	width  = 8 * vg.Inch
	height = 4 * vg.Inch
)

var lineColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(s), ".png"))
	if slices.Contains(Kinds, k) {
		return k, nil
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// WritePNG draws the chart of the given kind for view and writes it to w.
func WritePNG(w io.Writer, kind Kind, view *services.View) error {
	p, err := Build(kind, view)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("encode %s chart: %w", kind, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s chart: %w", kind, err)
	}
	return nil
}

func Build(kind Kind, view *services.View) (*plot.Plot, error) {
	switch kind {
	case Trend:
		return trendChart(view.Trend)
	case Monthly:
		return monthlyChart(view.Monthly)
	case Region:
		return barChart("Sales by Region", "Region", view.Regions)
	case Category:
		return barChart("Sales by Category", "Category", view.Categories)
	case Scatter:
		return scatterChart(view.Scatter)
	default:
		return nil, fmt.Errorf("unknown chart %q", kind)
	}
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

// markEmpty gives a plot without data finite axes and a visible note.
func markEmpty(p *plot.Plot) *plot.Plot {
	p.Title.Text += " (no data for current filters)"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	return p
}

func trendChart(series models.Series) (*plot.Plot, error) {
	p := newPlot("Sales Over Time", "Order Date", "Sales")
	if len(series) == 0 {
		return markEmpty(p), nil
	}

	points := make(plotter.XYs, len(series))
	for i, b := range series {
		d, err := time.Parse(filter.DateLayout, b.Key)
		if err != nil {
			return nil, fmt.Errorf("trend bucket %q: %w", b.Key, err)
		}
		points[i].X = float64(d.Unix())
		points[i].Y = b.Value
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("trend line: %w", err)
	}
	line.Color = lineColor
	line.Width = vg.Points(1.5)

	p.Add(line)
	p.X.Tick.Marker = plot.TimeTicks{Format: filter.DateLayout}
	return p, nil
}

func monthlyChart(series models.Series) (*plot.Plot, error) {
	p := newPlot("Monthly Sales", "Month", "Sales")
	if len(series) == 0 {
		return markEmpty(p), nil
	}

	points := make(plotter.XYs, len(series))
	for i, b := range series {
		points[i].X = float64(i)
		points[i].Y = b.Value
	}

	line, points2, err := plotter.NewLinePoints(points)
	if err != nil {
		return nil, fmt.Errorf("monthly line: %w", err)
	}
	line.Color = lineColor
	line.Width = vg.Points(2)
	points2.Shape = draw.CircleGlyph{}
	points2.Color = lineColor

	p.Add(line, points2)
	p.NominalX(series.Keys()...)
	return p, nil
}

func barChart(title, xLabel string, series models.Series) (*plot.Plot, error) {
	p := newPlot(title, xLabel, "Sales")
	if len(series) == 0 {
		return markEmpty(p), nil
	}

	barWidth := vg.Points(math.Max(12, 240/float64(len(series))))
	for i, b := range series {
		bars, err := plotter.NewBarChart(plotter.Values{b.Value}, barWidth)
		if err != nil {
			return nil, fmt.Errorf("%s bars: %w", xLabel, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.XMin = float64(i)
		p.Add(bars)
	}

	p.NominalX(series.Keys()...)
	if p.Y.Min > 0 {
		p.Y.Min = 0
	}
	return p, nil
}

func scatterChart(set models.ScatterSet) (*plot.Plot, error) {
	p := newPlot("Discount vs Profit", "Discount", "Profit")
	if len(set.Points) == 0 {
		return markEmpty(p), nil
	}

	var categories []string
	byCategory := make(map[string]plotter.XYs)
	for _, pt := range set.Points {
		if _, ok := byCategory[pt.Category]; !ok {
			categories = append(categories, pt.Category)
		}
		byCategory[pt.Category] = append(byCategory[pt.Category], plotter.XY{X: pt.Discount, Y: pt.Profit})
	}
	slices.Sort(categories)

	for i, c := range categories {
		s, err := plotter.NewScatter(byCategory[c])
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", c, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(c, s)
	}

	if len(set.Points) > 1 {
		fit := plotter.NewFunction(func(x float64) float64 { return set.Intercept + set.Slope*x })
		fit.Color = color.Gray{Y: 90}
		fit.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(fit)
		p.Legend.Add(fmt.Sprintf("trend (r=%.2f)", set.Correlation), fit)
	}
	p.Legend.Top = true
	return p, nil
}
