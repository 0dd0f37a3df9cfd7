package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/goccy/go-json"

	"orders-dashboard/internal/config"
)

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Performance Dashboard - USA</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
`

// initialSignals declares every signal the page binds or draws from.
// The chart series start empty and arrive with the first patch.
func initialSignals(cfg config.DashboardConfig) ([]byte, error) {
	return json.Marshal(map[string]any{
		"region":       "",
		"state":        "",
		"city":         "",
		"metric":       "profit",
		"year":         cfg.PreviousYear,
		"n":            cfg.RankSize,
		"segment":      "",
		"category":     "",
		"subCategory":  "",
		"productQuery": "",
		"metricLabel":  "",
		"chartYear":    cfg.PreviousYear,
		"monthlyData":  []any{},
		"segmentData":  []any{},
		"categoryData": []any{},
		"topData":      []any{},
		"bottomData":   []any{},
	})
}

// Dashboard is the page shell. Every section is filled in by /sse/dashboard.
func Dashboard(cfg config.DashboardConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := initialSignals(cfg)
		if err != nil {
			return err
		}

		return write(w,
			pageHead,
			chartScript,
			`</head>`,
			`<body data-signals='`, esc(string(signals)), `' data-on:load="@get('/sse/dashboard')">`,
			`<aside class="sidebar"><h2>Filter Data by Location</h2><div id="filter-bar"></div></aside>`,
			`<main>`,
			`<h1>Sales Performance Dashboard - USA (FY `, fmt.Sprint(cfg.PreviousYear), `-`, fmt.Sprint(cfg.CurrentYear), `)</h1>`,
			`<p id="scope-header"></p>`,
			`<section><h3>Summary metrics</h3><div id="kpi-cards"></div></section>`,
			`<div id="charts" data-effect="`, chartEffect, `">`,
			`<section><h3>Monthly Sales &amp; Profit Trends</h3>`,
			`<canvas id="monthly-sales-chart"></canvas><canvas id="monthly-profit-chart"></canvas></section>`,
			`<section><h3>Comparative Analysis: Profit &amp; Sales by Business Dimensions</h3>`,
			metricControls(cfg),
			`<canvas id="segment-chart"></canvas><canvas id="category-chart"></canvas>`,
			`<canvas id="top-products-chart"></canvas><canvas id="bottom-products-chart"></canvas>`,
			`<div id="product-insights"></div></section>`,
			`</div>`,
			`<section><h3>View Dataset</h3>`,
			`<div id="table-filters"></div>`,
			productSearch(),
			`<div id="data-table"></div></section>`,
			`</main></body></html>`,
		)
	})
}

func metricControls(cfg config.DashboardConfig) string {
	reload := ` data-on:change="@get('/sse/dashboard')"`
	return `<div class="controls">` +
		`<label><input type="radio" name="metric" value="profit" data-bind:metric` + reload + `> Profit</label>` +
		`<label><input type="radio" name="metric" value="sales" data-bind:metric` + reload + `> Sales</label>` +
		fmt.Sprintf(`<label><input type="radio" name="year" value="%d" data-bind:year%s> %d</label>`, cfg.PreviousYear, reload, cfg.PreviousYear) +
		fmt.Sprintf(`<label><input type="radio" name="year" value="%d" data-bind:year%s> %d</label>`, cfg.CurrentYear, reload, cfg.CurrentYear) +
		`<label>Select number of products to display (Max 50)` +
		`<input type="number" min="1" max="50" step="1" data-bind:n` + reload + `></label>` +
		`</div>`
}

// productSearch stays outside the patched table filters so typing is not
// interrupted by a fragment swap.
func productSearch() string {
	return `<div class="controls">` +
		`<label>Search Product ID<input type="search" data-bind:product-query` +
		` data-on:change="@get('/sse/dashboard')"></label>` +
		`</div>`
}
