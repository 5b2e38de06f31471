package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecom-dashboard/internal/errors"
	"ecom-dashboard/internal/models"
	"ecom-dashboard/internal/services"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *errors.AppError `json:"error"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestAnalytics(t *testing.T) *services.Analytics {
	t.Helper()

	orders := []models.OrderRecord{
		{
			OrderID: "A", CustomerUniqueID: "alice", OrderStatus: services.StatusDelivered,
			PurchaseTimestamp: date(2021, time.January, 15), PaymentValue: 100,
			PaymentType: "credit_card", PaymentInstallments: 3,
			CustomerCity: "sao_paulo", CustomerState: "SP",
		},
		{
			OrderID: "B", CustomerUniqueID: "bob", OrderStatus: services.StatusDelivered,
			PurchaseTimestamp: date(2021, time.February, 1), PaymentValue: 50,
			PaymentType: "boleto", PaymentInstallments: 1,
			CustomerCity: "rio_de_janeiro", CustomerState: "RJ",
		},
	}
	items := []models.OrderItemRecord{
		{OrderID: "A", PurchaseTimestamp: date(2021, time.January, 15), ProductID: "p1", ProductCategory: "health_beauty", Price: 90},
		{OrderID: "B", PurchaseTimestamp: date(2021, time.February, 1), ProductID: "p2", ProductCategory: "watches_gifts", Price: 45},
	}
	reviews := []models.ReviewRecord{
		{CreationDate: date(2021, time.January, 20), Score: 5, CommentMessage: "chegou rapido"},
		{CreationDate: date(2021, time.February, 2), Score: 2, CommentMessage: "produto com defeito"},
	}

	analytics := services.NewAnalytics()
	analytics.SetData(orders, items, reviews)
	return analytics
}

func doRequest(t *testing.T, handler http.HandlerFunc, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, env
}

func TestHandleMonthlyOrders(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	rec, env := doRequest(t, h.HandleMonthlyOrders, "/api/monthly-orders")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", got)
	}

	var rows []models.MonthlyOrders
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d buckets, want 2 (full span default)", len(rows))
	}
	if rows[0].Month != "2021-01" || rows[0].Revenue != 100 {
		t.Errorf("first bucket = %+v, want 2021-01 with revenue 100", rows[0])
	}
}

func TestHandleMonthlyOrders_DateRange(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"narrowed to january", "/api/monthly-orders?start=2021-01-01&end=2021-01-31", 1},
		{"start only", "/api/monthly-orders?start=2021-02-01", 1},
		{"end only", "/api/monthly-orders?end=2021-01-31", 1},
		{"inverted range", "/api/monthly-orders?start=2021-03-01&end=2021-01-01", 0},
		{"malformed start", "/api/monthly-orders?start=not-a-date", 0},
		{"malformed end", "/api/monthly-orders?end=2021-13-45", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, h.HandleMonthlyOrders, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (bad bounds mean no data, not an error)", rec.Code)
			}
			if !env.Success {
				t.Fatal("expected success envelope")
			}
			var rows []models.MonthlyOrders
			if err := json.Unmarshal(env.Data, &rows); err != nil {
				t.Fatalf("failed to decode data: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("got %d buckets, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestHandleCityRollup_SortRevenue(t *testing.T) {
	analytics := services.NewAnalytics()
	analytics.SetData([]models.OrderRecord{
		{OrderID: "A", OrderStatus: services.StatusDelivered, PurchaseTimestamp: date(2021, time.January, 1), PaymentValue: 10, CustomerCity: "sao_paulo", CustomerState: "SP"},
		{OrderID: "B", OrderStatus: services.StatusDelivered, PurchaseTimestamp: date(2021, time.January, 2), PaymentValue: 10, CustomerCity: "sao_paulo", CustomerState: "SP"},
		{OrderID: "C", OrderStatus: services.StatusDelivered, PurchaseTimestamp: date(2021, time.January, 3), PaymentValue: 100, CustomerCity: "campinas", CustomerState: "SP"},
	}, nil, nil)
	h := NewAPIHandlers(analytics, testLogger())

	_, env := doRequest(t, h.HandleCityRollup, "/api/city-rollup")
	var byOrders []models.CityRollup
	if err := json.Unmarshal(env.Data, &byOrders); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if byOrders[0].City != "sao_paulo" {
		t.Errorf("default sort leads with %q, want sao_paulo", byOrders[0].City)
	}

	_, env = doRequest(t, h.HandleCityRollup, "/api/city-rollup?sort=revenue")
	var byRevenue []models.CityRollup
	if err := json.Unmarshal(env.Data, &byRevenue); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if byRevenue[0].City != "campinas" {
		t.Errorf("revenue sort leads with %q, want campinas", byRevenue[0].City)
	}
}

func TestHandleRFM(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	t.Run("full span", func(t *testing.T) {
		rec, env := doRequest(t, h.HandleRFM, "/api/rfm")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var rows []models.RFMEntry
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("got %d customers, want 2", len(rows))
		}
	})

	t.Run("empty range is unprocessable", func(t *testing.T) {
		rec, env := doRequest(t, h.HandleRFM, "/api/rfm?start=2019-01-01&end=2019-12-31")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		if env.Success {
			t.Error("expected error envelope")
		}
		if env.Error == nil || env.Error.Code != errors.CodeInsufficientData {
			t.Errorf("error = %+v, want INSUFFICIENT_DATA", env.Error)
		}
	})
}

func TestHandleRecentReviews_Limit(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	_, env := doRequest(t, h.HandleRecentReviews, "/api/recent-reviews?limit=1")
	var rows []models.RecentReview
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d reviews, want 1", len(rows))
	}
	if rows[0].CommentMessage != "produto com defeito" {
		t.Errorf("first review = %q, want the newest message", rows[0].CommentMessage)
	}

	_, env = doRequest(t, h.HandleRecentReviews, "/api/recent-reviews?limit=junk")
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("bad limit should fall back to the default, got %d reviews", len(rows))
	}
}

func TestHandleSummary(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	t.Run("full span", func(t *testing.T) {
		rec, env := doRequest(t, h.HandleSummary, "/api/summary")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var s models.Summary
		if err := json.Unmarshal(env.Data, &s); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
		if s.TotalOrders != 2 || s.TotalRevenue != 150 {
			t.Errorf("summary = %+v, want 2 orders totaling 150", s)
		}
		if s.TopPaymentType != "credit_card" && s.TopPaymentType != "boleto" {
			t.Errorf("top payment type = %q", s.TopPaymentType)
		}
	})

	t.Run("rfm shortfall still serves the rest", func(t *testing.T) {
		rec, env := doRequest(t, h.HandleSummary, "/api/summary?start=2019-01-01&end=2019-12-31")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 even without RFM", rec.Code)
		}
		var s models.Summary
		if err := json.Unmarshal(env.Data, &s); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
		if s.TotalOrders != 0 || s.AvgMonetary != 0 {
			t.Errorf("empty range summary = %+v, want zeros", s)
		}
		if !env.Success {
			t.Error("expected success envelope")
		}
	})
}

func TestHandleSatisfaction_AgreesWithScores(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	_, scoreEnv := doRequest(t, h.HandleReviewScores, "/api/review-scores")
	_, splitEnv := doRequest(t, h.HandleSatisfaction, "/api/satisfaction")

	var scores []models.ReviewScoreCount
	var split []models.SatisfactionCount
	if err := json.Unmarshal(scoreEnv.Data, &scores); err != nil {
		t.Fatalf("failed to decode scores: %v", err)
	}
	if err := json.Unmarshal(splitEnv.Data, &split); err != nil {
		t.Fatalf("failed to decode split: %v", err)
	}

	var scoreTotal, splitTotal int
	for _, s := range scores {
		scoreTotal += s.Count
	}
	for _, s := range split {
		splitTotal += s.Count
	}
	if scoreTotal != splitTotal {
		t.Errorf("score total %d != satisfaction total %d", scoreTotal, splitTotal)
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	rec, env := doRequest(t, h.HandleHealth, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health map[string]string
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", health["status"])
	}
}

func TestHandleStats(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	_, env := doRequest(t, h.HandleStats, "/admin/stats")
	var stats map[string]any
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if stats["order_rows"] != float64(2) {
		t.Errorf("order_rows = %v, want 2", stats["order_rows"])
	}
	if stats["span_start"] != "2021-01-15" {
		t.Errorf("span_start = %v, want 2021-01-15", stats["span_start"])
	}
}

func TestHandleExport(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != xlsxContentType {
		t.Errorf("Content-Type = %q, want %q", got, xlsxContentType)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(got, `attachment; filename="dashboard_`) {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Error("workbook body is empty")
	}
}

func TestBuildWorkbook(t *testing.T) {
	analytics := createTestAnalytics(t)
	start, end := analytics.Span()
	data, err := analytics.Snapshot(start, end)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	workbook, err := buildWorkbook(data)
	if err != nil {
		t.Fatalf("buildWorkbook() error = %v", err)
	}
	defer workbook.Close()

	want := []string{"monthly_orders", "category_performance", "payment_types", "installments", "cities", "states", "review_scores", "satisfaction", "rfm"}
	sheets := workbook.GetSheetList()
	if len(sheets) != len(want) {
		t.Fatalf("workbook has %d sheets %v, want %d", len(sheets), sheets, len(want))
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i], name)
		}
	}

	month, err := workbook.GetCellValue("monthly_orders", "A2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if month != "2021-01" {
		t.Errorf("monthly_orders!A2 = %q, want 2021-01", month)
	}
}
