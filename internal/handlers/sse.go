package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"ecom-dashboard/internal/models"
	"ecom-dashboard/internal/services"
	"ecom-dashboard/internal/ui/templates"
	"github.com/starfederation/datastar-go/datastar"
)

const maxTableRows = 50

var monthlyTableTemplate = template.Must(template.New("monthlyTable").Parse(`
<div id="monthly-content">
<table class="modern-table">
<thead><tr><th>Month</th><th>Orders</th><th>Revenue</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Month}}</td>
<td>{{.OrderCount}}</td>
<td><strong>R${{printf "%.2f" .Revenue}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var geoTableTemplate = template.Must(template.New("geoTable").Parse(`
<div id="geo-content">
<table class="modern-table">
<thead><tr><th>City</th><th>Orders</th><th>Revenue</th></tr></thead>
<tbody>
{{range .Cities}}<tr>
<td>{{.Name}}</td>
<td>{{.OrderCount}}</td>
<td>R${{printf "%.2f" .Revenue}}</td>
</tr>{{end}}
</tbody>
</table>
<table class="modern-table">
<thead><tr><th>State</th><th>Orders</th><th>Revenue</th></tr></thead>
<tbody>
{{range .States}}<tr>
<td>{{.Name}}</td>
<td>{{.OrderCount}}</td>
<td>R${{printf "%.2f" .Revenue}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type geoRow struct {
	Name       string
	OrderCount int
	Revenue    float64
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderMonthlyTable(rows []models.MonthlyOrders) (string, error) {
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	var buf strings.Builder
	err := monthlyTableTemplate.Execute(&buf, rows)
	return buf.String(), err
}

// renderGeoTable renders the city and state rollups with display labels
// ("sao_paulo" -> "Sao paulo", "sp" -> "SP"); the signal data keeps raw keys.
func (h *SSEHandlers) renderGeoTable(cities []models.CityRollup, states []models.StateRollup) (string, error) {
	if len(cities) > maxTableRows {
		cities = cities[:maxTableRows]
	}
	if len(states) > maxTableRows {
		states = states[:maxTableRows]
	}

	view := struct {
		Cities []geoRow
		States []geoRow
	}{
		Cities: make([]geoRow, len(cities)),
		States: make([]geoRow, len(states)),
	}
	for i, c := range cities {
		view.Cities[i] = geoRow{Name: templates.PrettyLabel(c.City), OrderCount: c.OrderCount, Revenue: c.Revenue}
	}
	for i, s := range states {
		view.States[i] = geoRow{Name: templates.PrettyState(s.State), OrderCount: s.OrderCount, Revenue: s.Revenue}
	}

	var buf strings.Builder
	err := geoTableTemplate.Execute(&buf, view)
	return buf.String(), err
}

func (h *SSEHandlers) HandleMonthlyOrders(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	start, end := queryRange(h.analytics, r)
	rows := h.analytics.MonthlyOrders(start, end)

	html, err := h.renderMonthlyTable(rows)
	if err != nil {
		h.logger.Error("render monthly table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"monthlyData": rows,
	})
	if err != nil {
		h.logger.Error("marshal monthly data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleCategoryPerformance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	start, end := queryRange(h.analytics, r)
	jsonData, err := json.Marshal(map[string]any{
		"categoryData": h.analytics.CategoryPerformance(start, end),
	})
	if err != nil {
		h.logger.Error("marshal category data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="category-content">✅ Category chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandlePayments(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	start, end := queryRange(h.analytics, r)
	jsonData, err := json.Marshal(map[string]any{
		"paymentData":     h.analytics.PaymentTypeCounts(start, end),
		"installmentData": h.analytics.InstallmentUsage(start, end),
	})
	if err != nil {
		h.logger.Error("marshal payment data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="payments-content">✅ Payment chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleReviews(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	start, end := queryRange(h.analytics, r)
	scores := h.analytics.ReviewScoreCounts(start, end)
	jsonData, err := json.Marshal(map[string]any{
		"reviewData":       scores,
		"satisfactionData": services.SplitFromScores(scores),
		"recentReviews":    h.analytics.RecentReviews(start, end, defaultReviewLimit),
	})
	if err != nil {
		h.logger.Error("marshal review data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="reviews-content">✅ Review chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll recomputes every view for the selected range and pushes
// the whole dashboard in one SSE exchange. A range without delivered orders
// still refreshes the other tabs; the RFM section reports no data.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	start, end := queryRange(h.analytics, r)
	data, err := h.analytics.Snapshot(start, end)
	if err != nil {
		h.logger.Warn("dashboard refreshed without RFM", "error", err)
	}

	html, err := h.renderMonthlyTable(data.MonthlyOrders)
	if err != nil {
		h.logger.Error("render monthly table", "error", err)
		return
	}
	sse.PatchElements(html)

	geoHTML, err := h.renderGeoTable(data.Cities, data.States)
	if err != nil {
		h.logger.Error("render geo table", "error", err)
		return
	}
	sse.PatchElements(geoHTML)

	allSignals, err := json.Marshal(map[string]any{
		"monthlyData":      data.MonthlyOrders,
		"categoryData":     data.CategoryPerformance,
		"paymentData":      data.PaymentTypes,
		"installmentData":  data.Installments,
		"cityData":         data.Cities,
		"stateData":        data.States,
		"reviewData":       data.ReviewScores,
		"satisfactionData": data.Satisfaction,
		"rfmData":          data.RFM,
		"recentReviews":    data.RecentReviews,
		"summary":          data.Summary,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
