package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orders-dashboard/internal/config"
	"orders-dashboard/internal/loader"
	"orders-dashboard/internal/middleware"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/server"
	"orders-dashboard/internal/services"
	"orders-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

func dashboardPage(cfg config.DashboardConfig) http.HandlerFunc {
	page := templates.Dashboard(cfg)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := page.Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

// newLoader picks the dataset source. The returned closer releases any
// connection the loader holds and is never nil.
func newLoader(ctx context.Context, cfg config.DatasetConfig, logger *slog.Logger) (loader.Loader, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Source {
	case config.SourcePostgres:
		db, err := loader.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func(context.Context) error { return db.Close() }
		return loader.NewPostgresLoader(db, cfg.PostgresTable, logger), closeDB, nil

	default:
		var cache *loader.Cache
		if cfg.CacheEnabled {
			cache = loader.NewCache(cfg.CacheDir)
		}
		return loader.NewCSVLoader(cfg.CSVFile, cache, logger), noop, nil
	}
}

func newHandler(cfg *config.Config, dashboard *services.Dashboard, logger *slog.Logger) http.Handler {
	srv := server.NewServer(dashboard, logger, &server.TemplateHandlers{
		Dashboard: dashboardPage(cfg.Dashboard),
	})

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(logger),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.Security), logger),
		middleware.Metrics(),
	)
	return chain(srv)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	defer cancel()

	src, closeSource, err := newLoader(loadCtx, cfg.Dataset, logger)
	if err != nil {
		return fmt.Errorf("open dataset source: %w", err)
	}

	dashboard := services.NewDashboard(cfg.Dashboard, logger)
	if err := dashboard.Load(loadCtx, src); err != nil {
		closeSource(ctx)
		return fmt.Errorf("load dataset: %w", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("dataset source", closeSource)

	return gracefulServer.Run(ctx)
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
		"addr", cfg.Address(),
		"dataset_source", cfg.Dataset.Source,
		"log_level", cfg.Logger.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
