package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"ecom-dashboard/internal/errors"
	"ecom-dashboard/internal/observability"
	"ecom-dashboard/internal/services"
)

const defaultReviewLimit = 50

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleMonthlyOrders(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	errors.WriteSuccessWithHeaders(w, h.analytics.MonthlyOrders(start, end), cacheHeaders)
}

func (h *APIHandlers) HandleCategoryPerformance(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	errors.WriteSuccessWithHeaders(w, h.analytics.CategoryPerformance(start, end), cacheHeaders)
}

func (h *APIHandlers) HandlePaymentTypes(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	errors.WriteSuccessWithHeaders(w, h.analytics.PaymentTypeCounts(start, end), cacheHeaders)
}

func (h *APIHandlers) HandleInstallments(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	errors.WriteSuccessWithHeaders(w, h.analytics.InstallmentUsage(start, end), cacheHeaders)
}

// HandleCityRollup serves the city rollup ordered by order count; the
// ?sort=revenue variant re-sorts the same computation.
func (h *APIHandlers) HandleCityRollup(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	rows := h.analytics.CityRollup(start, end)
	if r.URL.Query().Get("sort") == "revenue" {
		rows = services.CitiesByRevenue(rows)
	}
	errors.WriteSuccessWithHeaders(w, rows, cacheHeaders)
}

func (h *APIHandlers) HandleStateRollup(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	rows := h.analytics.StateRollup(start, end)
	if r.URL.Query().Get("sort") == "revenue" {
		rows = services.StatesByRevenue(rows)
	}
	errors.WriteSuccessWithHeaders(w, rows, cacheHeaders)
}

func (h *APIHandlers) HandleReviewScores(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	errors.WriteSuccessWithHeaders(w, h.analytics.ReviewScoreCounts(start, end), cacheHeaders)
}

func (h *APIHandlers) HandleSatisfaction(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	errors.WriteSuccessWithHeaders(w, h.analytics.SatisfactionSplit(start, end), cacheHeaders)
}

func (h *APIHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)

	rfm, err := h.analytics.RFM(start, end)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, rfm, cacheHeaders)
}

func (h *APIHandlers) HandleRecentReviews(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)
	limit := queryLimit(r, defaultReviewLimit)
	errors.WriteSuccessWithHeaders(w, h.analytics.RecentReviews(start, end, limit), cacheHeaders)
}

// HandleSummary serves the headline scalars. An RFM shortfall only zeroes
// the RFM averages; the remaining metrics are still reported.
func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	start, end := queryRange(h.analytics, r)

	data, err := h.analytics.Snapshot(start, end)
	if err != nil {
		h.logger.Warn("summary computed without RFM", "error", err)
	}

	errors.WriteSuccessWithHeaders(w, data.Summary, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
