package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ecom-dashboard/internal/config"
	"ecom-dashboard/internal/dataset"
	"ecom-dashboard/internal/middleware"
	"ecom-dashboard/internal/models"
	"ecom-dashboard/internal/observability"
	"ecom-dashboard/internal/server"
	"ecom-dashboard/internal/services"
	"ecom-dashboard/internal/ui/templates"

	"golang.org/x/sync/errgroup"
)

const (
	renderTimeout   = 10 * time.Second
	datasetTimeout  = 60 * time.Second
	pageCacheMaxAge = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", pageCacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// loadDatasets reads the three extracts concurrently.
func loadDatasets(ctx context.Context, logger *slog.Logger, cfg config.DataConfig) ([]models.OrderRecord, []models.OrderItemRecord, []models.ReviewRecord, error) {
	var (
		orders  []models.OrderRecord
		items   []models.OrderItemRecord
		reviews []models.ReviewRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = dataset.LoadOrders(gctx, logger, cfg.OrdersFile)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = dataset.LoadItems(gctx, logger, cfg.ItemsFile)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = dataset.LoadReviews(gctx, logger, cfg.ReviewsFile)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return orders, items, reviews, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(), datasetTimeout)
	defer cancel()

	start := time.Now()
	orders, items, reviews, err := loadDatasets(ctx, logger, cfg.Data)
	if err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}
	logger.Info("datasets loaded",
		"order_rows", len(orders),
		"item_rows", len(items),
		"review_rows", len(reviews),
		"duration", time.Since(start),
	)

	analytics := services.NewAnalytics()
	analytics.SetData(orders, items, reviews)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Compression(logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping rate limiter")
		rateLimiter.Stop()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
