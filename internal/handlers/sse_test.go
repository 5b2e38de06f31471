package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doSSERequest(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	return rec
}

func TestHandleMonthlyOrdersSSE(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger())

	rec := doSSERequest(t, h.HandleMonthlyOrders, "/sse/monthly-orders")
	body := rec.Body.String()

	if !strings.Contains(body, `id="monthly-content"`) {
		t.Error("response should patch the monthly content element")
	}
	if !strings.Contains(body, "2021-01") || !strings.Contains(body, "R$100.00") {
		t.Error("monthly table should render the january bucket")
	}
	if !strings.Contains(body, "monthlyData") {
		t.Error("response should patch the monthlyData signal")
	}
}

func TestHandleCategoryPerformanceSSE(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger())

	rec := doSSERequest(t, h.HandleCategoryPerformance, "/sse/category-performance")
	body := rec.Body.String()

	if !strings.Contains(body, "categoryData") || !strings.Contains(body, "health_beauty") {
		t.Error("response should carry the category signal data")
	}
	if !strings.Contains(body, `id="category-content"`) {
		t.Error("response should patch the category content element")
	}
}

func TestHandlePaymentsSSE(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger())

	rec := doSSERequest(t, h.HandlePayments, "/sse/payments")
	body := rec.Body.String()

	if !strings.Contains(body, "paymentData") || !strings.Contains(body, "installmentData") {
		t.Error("response should carry payment and installment signals")
	}
}

func TestHandleReviewsSSE(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger())

	rec := doSSERequest(t, h.HandleReviews, "/sse/reviews")
	body := rec.Body.String()

	for _, signal := range []string{"reviewData", "satisfactionData", "recentReviews"} {
		if !strings.Contains(body, signal) {
			t.Errorf("response should carry the %s signal", signal)
		}
	}
	if !strings.Contains(body, "produto com defeito") {
		t.Error("recent reviews should include the newest message")
	}
}

func TestHandleRefreshAllSSE(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger())

	t.Run("full span", func(t *testing.T) {
		rec := doSSERequest(t, h.HandleRefreshAll, "/sse/refresh-all")
		body := rec.Body.String()

		for _, signal := range []string{"monthlyData", "categoryData", "paymentData", "cityData", "stateData", "rfmData", "summary"} {
			if !strings.Contains(body, signal) {
				t.Errorf("refresh should carry the %s signal", signal)
			}
		}
		if !strings.Contains(body, `id="monthly-content"`) {
			t.Error("refresh should patch the monthly table")
		}
		if !strings.Contains(body, `id="geo-content"`) {
			t.Error("refresh should patch the city/state tables")
		}
		if !strings.Contains(body, "Sao paulo") || !strings.Contains(body, "Rio de janeiro") {
			t.Error("city table should render display labels, not raw keys")
		}
	})

	t.Run("range without delivered orders still refreshes", func(t *testing.T) {
		rec := doSSERequest(t, h.HandleRefreshAll, "/sse/refresh-all?start=2019-01-01&end=2019-12-31")
		body := rec.Body.String()

		if !strings.Contains(body, `"rfmData":[]`) {
			t.Error("RFM signal should be an empty list, not missing")
		}
		if !strings.Contains(body, "summary") {
			t.Error("summary signal should still be patched")
		}
	})
}

func TestRenderGeoTable(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger())

	start, end := h.analytics.Span()
	html, err := h.renderGeoTable(h.analytics.CityRollup(start, end), h.analytics.StateRollup(start, end))
	if err != nil {
		t.Fatalf("renderGeoTable() error = %v", err)
	}

	for _, label := range []string{"Sao paulo", "Rio de janeiro", "SP", "RJ"} {
		if !strings.Contains(html, ">"+label+"<") {
			t.Errorf("geo table is missing the %q label", label)
		}
	}
	if strings.Contains(html, ">sao_paulo<") {
		t.Error("geo table should not render raw snake_case keys")
	}
}

func TestRenderMonthlyTable_RowCap(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger())

	rows := h.analytics.MonthlyOrders(h.analytics.Span())
	html, err := h.renderMonthlyTable(rows)
	if err != nil {
		t.Fatalf("renderMonthlyTable() error = %v", err)
	}
	if count := strings.Count(html, "<tr>"); count != len(rows)+1 {
		t.Errorf("table has %d rows, want %d data rows plus header", count, len(rows))
	}
}
