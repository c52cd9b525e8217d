package insights

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"

	"sales-dashboard/internal/models"
)

const keyPlaceholder = "{key}"

// Texts holds the authored narrative. Lines are markdown; the two templates
// receive the selected key in place of {key}.
type Texts struct {
	RegionTemplate   string   `yaml:"region_template"`
	CategoryTemplate string   `yaml:"category_template"`
	Observations     []string `yaml:"observations"`
	Recommendations  []string `yaml:"recommendations"`
	NoData           string   `yaml:"no_data"`
}

func DefaultTexts() Texts {
	return Texts{
		RegionTemplate:   "The highest revenue generating region is **{key}**.",
		CategoryTemplate: "The top-performing category is **{key}**.",
		Observations: []string{
			"Higher discounts tend to reduce profit margins in certain categories.",
			"Monthly growth indicates recent sales performance trend.",
		},
		Recommendations: []string{
			"Focus marketing efforts on high-performing regions.",
			"Optimize discount strategy to protect profit margins.",
			"Invest more in top-performing product categories.",
			"Monitor low-growth months and investigate root causes.",
		},
		NoData: "No data for current filters.",
	}
}

// LoadTexts reads narrative overrides from a YAML file. Fields missing from
// the file keep their default text.
func LoadTexts(path string) (Texts, error) {
	texts := DefaultTexts()

	data, err := os.ReadFile(path)
	if err != nil {
		return texts, fmt.Errorf("read narrative file: %w", err)
	}

	var override Texts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return texts, fmt.Errorf("parse narrative file: %w", err)
	}

	if override.RegionTemplate != "" {
		texts.RegionTemplate = override.RegionTemplate
	}
	if override.CategoryTemplate != "" {
		texts.CategoryTemplate = override.CategoryTemplate
	}
	if len(override.Observations) > 0 {
		texts.Observations = override.Observations
	}
	if len(override.Recommendations) > 0 {
		texts.Recommendations = override.Recommendations
	}
	if override.NoData != "" {
		texts.NoData = override.NoData
	}
	return texts, nil
}

type Narrative struct {
	HasData         bool     `json:"has_data"`
	TopRegion       string   `json:"top_region,omitempty"`
	TopCategory     string   `json:"top_category,omitempty"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// Build assembles the narrative for the grouped totals of one filter pass.
// An empty selection is reported through HasData and the no-data message
// rather than as an error.
func Build(regions, categories models.Series, texts Texts) Narrative {
	n := Narrative{
		Insights:        make([]string, 0, 2+len(texts.Observations)),
		Recommendations: append([]string(nil), texts.Recommendations...),
	}

	topRegion, regionErr := TopKey(regions)
	topCategory, categoryErr := TopKey(categories)

	switch {
	case errors.Is(regionErr, ErrEmptyInput), errors.Is(categoryErr, ErrEmptyInput):
		n.Insights = append(n.Insights, texts.NoData)
	default:
		n.HasData = true
		n.TopRegion = topRegion
		n.TopCategory = topCategory
		n.Insights = append(n.Insights,
			fill(texts.RegionTemplate, topRegion),
			fill(texts.CategoryTemplate, topCategory),
		)
	}

	n.Insights = append(n.Insights, texts.Observations...)
	return n
}

func fill(tmpl, key string) string {
	return strings.ReplaceAll(tmpl, keyPlaceholder, escapeMarkdown(key))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `<`, `&lt;`, `>`, `&gt;`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// HTML renders one markdown narrative line as an inline HTML fragment.
func HTML(line string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.SkipHTML})
	out := markdown.ToHTML([]byte(line), p, renderer)

	s := strings.TrimSpace(string(out))
	s = strings.TrimPrefix(s, "<p>")
	s = strings.TrimSuffix(s, "</p>")
	return template.HTML(s)
}
