package charts

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/filter"
	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func renderView(t *testing.T, spec func(*services.Dashboard) filter.Spec) *services.View {
	t.Helper()
	ds := dataset.New([]models.Record{
		{OrderDate: day(2023, 1, 5), Region: "West", Category: "Tech", Sales: 100, Profit: 20, Discount: 0.1},
		{OrderDate: day(2023, 2, 10), Region: "East", Category: "Tech", Sales: 200, Profit: 50, Discount: 0.0},
		{OrderDate: day(2023, 2, 15), Region: "West", Category: "Office", Sales: 50, Profit: -10, Discount: 0.2},
	})
	d := services.NewDashboard(ds, insights.DefaultTexts(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	view, err := d.Render(context.Background(), spec(d))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return view
}

func TestWritePNG(t *testing.T) {
	view := renderView(t, (*services.Dashboard).Defaults)

	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePNG(&buf, kind, view); err != nil {
				t.Fatalf("WritePNG(%s) error = %v", kind, err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Errorf("WritePNG(%s) did not produce a PNG", kind)
			}
		})
	}
}

func TestWritePNG_EmptyView(t *testing.T) {
	view := renderView(t, func(d *services.Dashboard) filter.Spec {
		return filter.New(nil, nil, day(2023, 1, 1), day(2023, 12, 31))
	})

	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePNG(&buf, kind, view); err != nil {
				t.Fatalf("WritePNG(%s) on empty view error = %v", kind, err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Errorf("WritePNG(%s) did not produce a PNG", kind)
			}
		})
	}
}

func TestBuild_Titles(t *testing.T) {
	view := renderView(t, (*services.Dashboard).Defaults)

	p, err := Build(Region, view)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title.Text != "Sales by Region" {
		t.Errorf("title = %q", p.Title.Text)
	}

	empty := renderView(t, func(d *services.Dashboard) filter.Spec { return filter.Spec{} })
	p, err = Build(Category, empty)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title.Text != "Sales by Category (no data for current filters)" {
		t.Errorf("empty title = %q", p.Title.Text)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"trend", Trend, false},
		{"Region.png", Region, false},
		{"scatter", Scatter, false},
		{"pie", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}
