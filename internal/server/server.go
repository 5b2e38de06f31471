package server

import (
	"log/slog"
	"net/http"

	"ecom-dashboard/internal/handlers"
	"ecom-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints, all date-range aware
	s.mux.HandleFunc("GET /api/monthly-orders", s.apiHandlers.HandleMonthlyOrders)
	s.mux.HandleFunc("GET /api/category-performance", s.apiHandlers.HandleCategoryPerformance)
	s.mux.HandleFunc("GET /api/payment-types", s.apiHandlers.HandlePaymentTypes)
	s.mux.HandleFunc("GET /api/installments", s.apiHandlers.HandleInstallments)
	s.mux.HandleFunc("GET /api/city-rollup", s.apiHandlers.HandleCityRollup)
	s.mux.HandleFunc("GET /api/state-rollup", s.apiHandlers.HandleStateRollup)
	s.mux.HandleFunc("GET /api/review-scores", s.apiHandlers.HandleReviewScores)
	s.mux.HandleFunc("GET /api/satisfaction", s.apiHandlers.HandleSatisfaction)
	s.mux.HandleFunc("GET /api/rfm", s.apiHandlers.HandleRFM)
	s.mux.HandleFunc("GET /api/recent-reviews", s.apiHandlers.HandleRecentReviews)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/export", s.apiHandlers.HandleExport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/monthly-orders", s.sseHandlers.HandleMonthlyOrders)
	s.mux.HandleFunc("GET /sse/category-performance", s.sseHandlers.HandleCategoryPerformance)
	s.mux.HandleFunc("GET /sse/payments", s.sseHandlers.HandlePayments)
	s.mux.HandleFunc("GET /sse/reviews", s.sseHandlers.HandleReviews)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
