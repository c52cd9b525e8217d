// Package templates holds the dashboard's HTML as templ components so they
// can be rendered into a page or patched into it over SSE.
package templates

import (
	"strconv"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/services"
)

const pageTitle = "E-Commerce Sales Intelligence Dashboard"

const sseRefresh = "@get('/sse/dashboard')"

// Signals is the client-side filter state shared with datastar.
type Signals struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
}

func SignalsFrom(state services.FilterState) Signals {
	return Signals{
		Regions:    state.Regions,
		Categories: state.Categories,
		Start:      state.Start,
		End:        state.End,
	}
}

// chartURL carries the session's filter version so browsers fetch fresh
// images after every change.
func chartURL(kind charts.Kind, version int) string {
	return "/charts/" + string(kind) + "?v=" + strconv.Itoa(version)
}

const pageStyle = `body { display: flex; margin: 0; font-family: system-ui, sans-serif; color: #1f2933; }
aside { width: 260px; padding: 1rem; background: #f5f7fa; min-height: 100vh; }
main { flex: 1; padding: 1rem 2rem; }
fieldset { border: none; padding: 0; margin-bottom: 1rem; }
.metrics { display: grid; grid-template-columns: repeat(4, 1fr); gap: 1rem; }
.metric { background: #fff; border: 1px solid #e4e7eb; border-radius: 8px; padding: 1rem; }
.metric .label { font-size: .85rem; color: #616e7c; }
.metric .value { font-size: 1.6rem; font-weight: 600; }
.charts img { width: 100%; max-width: 960px; display: block; margin-bottom: 1rem; }
.no-data { color: #ab091e; }`
