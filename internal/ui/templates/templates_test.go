package templates

import (
	"context"
	"strings"
	"testing"

	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func testView() *services.View {
	return &services.View{
		Filters: services.FilterState{
			Regions:    []string{"East", "West"},
			Categories: []string{"Tech"},
			Start:      "2023-01-01",
			End:        "2023-12-31",
		},
		Formatted: services.FormattedKPIs{Revenue: "$350", Profit: "$60", Margin: "17.14%", Growth: "150.00%"},
		Regions:   models.Series{{Key: "East", Value: 200}, {Key: "West", Value: 150}},
		Narrative: insights.Build(
			models.Series{{Key: "East", Value: 200}},
			models.Series{{Key: "Tech", Value: 300}},
			insights.DefaultTexts(),
		),
	}
}

func TestDashboard(t *testing.T) {
	options := services.FilterOptions{
		Regions:    []string{"East", "West"},
		Categories: []string{"Tech"},
		MinDate:    "2023-01-01",
		MaxDate:    "2023-12-31",
	}

	var sb strings.Builder
	if err := Dashboard(options, testView(), 3).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	html := sb.String()

	expected := []string{
		"<title>E-Commerce Sales Intelligence Dashboard</title>",
		`data-signals='{&#34;regions&#34;:[&#34;East&#34;,&#34;West&#34;]`,
		`data-bind="regions"`,
		`min="2023-01-01"`,
		`id="kpis"`,
		"$350",
		"/charts/scatter?v=3",
		"The top-performing category is <strong>Tech</strong>.",
	}
	for _, want := range expected {
		if !strings.Contains(html, want) {
			t.Errorf("page should contain %q", want)
		}
	}
}

func TestFragments(t *testing.T) {
	view := testView()

	tests := []struct {
		name     string
		render   func() (string, error)
		expected []string
	}{
		{
			name: "kpis",
			render: func() (string, error) {
				var sb strings.Builder
				err := KPIs(view).Render(context.Background(), &sb)
				return sb.String(), err
			},
			expected: []string{`<section id="kpis"`, "Total Revenue", "$60", "150.00%"},
		},
		{
			name: "charts",
			render: func() (string, error) {
				var sb strings.Builder
				err := Charts(7).Render(context.Background(), &sb)
				return sb.String(), err
			},
			expected: []string{`<section id="charts"`, "/charts/trend?v=7", "/charts/category?v=7"},
		},
		{
			name: "insights",
			render: func() (string, error) {
				var sb strings.Builder
				err := Insights(view).Render(context.Background(), &sb)
				return sb.String(), err
			},
			expected: []string{`<section id="insights"`, "Strategic Recommendations", "<strong>East</strong>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := tt.render()
			if err != nil {
				t.Fatalf("Render() failed: %v", err)
			}
			for _, want := range tt.expected {
				if !strings.Contains(html, want) {
					t.Errorf("%s fragment should contain %q", tt.name, want)
				}
			}
		})
	}
}

func TestInsights_NoData(t *testing.T) {
	view := testView()
	view.Narrative = insights.Build(nil, nil, insights.DefaultTexts())

	var sb strings.Builder
	if err := Insights(view).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !strings.Contains(sb.String(), `class="no-data"`) {
		t.Error("empty narrative should be marked as no-data")
	}
	if !strings.Contains(sb.String(), "No data for current filters.") {
		t.Error("empty narrative should state that there is no data")
	}
}
