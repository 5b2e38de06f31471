package templates

import (
	"context"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// PrettyLabel turns a snake_case dataset key into a display label
// ("sao_paulo" -> "Sao paulo"). Purely presentational; the tables keep the
// raw keys.
func PrettyLabel(key string) string {
	label := strings.Join(strings.Split(key, "_"), " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}

// PrettyState upper-cases a state key for display ("sp" -> "SP").
func PrettyState(key string) string {
	return strings.ToUpper(strings.Join(strings.Split(key, "_"), " "))
}

var pageTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// Dashboard renders the page shell. All tables and charts load through the
// datastar SSE endpoints after the page mounts.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pageTemplate.Execute(w, nil)
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>E-Commerce Analytics Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6fa; color: #222; }
header { background: #1230ae; color: #fff; padding: 1.25rem 2rem; }
header h1 { margin: 0; font-size: 1.4rem; }
header p { margin: 0.25rem 0 0; opacity: 0.8; font-size: 0.9rem; }
.controls { display: flex; gap: 1rem; padding: 1rem 2rem; align-items: center; background: #fff; border-bottom: 1px solid #e0e0e0; }
.tabs { display: flex; gap: 0.5rem; padding: 1rem 2rem 0; flex-wrap: wrap; }
.tabs button { border: none; background: #e8eaf6; padding: 0.5rem 1rem; border-radius: 6px 6px 0 0; cursor: pointer; }
.tabs button.active { background: #1230ae; color: #fff; }
.panel { padding: 1.5rem 2rem; }
.metric-row { display: flex; gap: 2rem; margin-bottom: 1rem; flex-wrap: wrap; }
.metric { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.modern-table { border-collapse: collapse; width: 100%; background: #fff; }
.modern-table th, .modern-table td { padding: 0.5rem 0.75rem; border-bottom: 1px solid #eee; text-align: left; }
</style>
</head>
<body data-signals="{start: '', end: ''}" data-on-load="@get('/sse/refresh-all')">
<header>
<h1>E-Commerce Analytics Dashboard</h1>
<p>Orders, categories, payments, reviews and RFM over a selectable timeframe</p>
</header>

<div class="controls">
<label>Timeframe
<input type="date" data-bind-start data-on-change="@get('/sse/refresh-all?start='+$start+'&end='+$end)">
<input type="date" data-bind-end data-on-change="@get('/sse/refresh-all?start='+$start+'&end='+$end)">
</label>
<a href="/api/export" download>Download workbook</a>
</div>

<div class="tabs">
<button class="active">Monthly Orders and Revenue</button>
<button>Product Category Performance</button>
<button>Payment Methods</button>
<button>Customer Reviews</button>
<button>RFM Analysis</button>
</div>

<section class="panel">
<h2>Monthly Orders and Revenue</h2>
<div class="metric-row">
<div class="metric" data-text="$summary.total_orders">—</div>
<div class="metric" data-text="$summary.total_revenue">—</div>
</div>
<div id="monthly-content">Loading monthly orders…</div>
<h2>Best Number of Orders by City and State</h2>
<div id="geo-content"></div>
</section>

<section class="panel">
<h2>Product Category Performance</h2>
<div id="category-content">Loading category performance…</div>
</section>

<section class="panel">
<h2>Payment Methods</h2>
<div id="payments-content">Loading payment methods…</div>
</section>

<section class="panel">
<h2>Customer Reviews</h2>
<div id="reviews-content">Loading customer reviews…</div>
</section>

<section class="panel">
<h2>RFM Analysis</h2>
<div id="rfm-content">Loading RFM analysis…</div>
</section>
</body>
</html>`
