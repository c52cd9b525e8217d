package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/insights"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/session"
)

const (
	sessionSweepInterval = time.Minute
	rateLimitIdle        = 5 * time.Minute
)

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
		"dataset", cfg.Dataset.File,
		"addr", cfg.Address(),
	)

	texts := insights.DefaultTexts()
	if cfg.Narrative.File != "" {
		if texts, err = insights.LoadTexts(cfg.Narrative.File); err != nil {
			logger.Error("failed to load narrative texts", "file", cfg.Narrative.File, "error", err)
			os.Exit(1)
		}
	}

	ds, err := loadDataset(cfg.Dataset, logger)
	if err != nil {
		logDatasetError(logger, err)
		os.Exit(1)
	}

	dashboard := services.NewDashboard(ds, texts, logger)
	sessions := session.NewStore(cfg.Session.TTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx, sessionSweepInterval)

	srv := server.NewServer(dashboard, sessions, logger, cfg.Server.RenderTimeout)
	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	go cleanupLimiter(ctx, rateLimiter)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(srv, cfg, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("sessions", func(context.Context) error {
		cancel()
		logger.Info("session sweeper stopped", "active_sessions", sessions.Len())
		return nil
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

func newHandler(srv http.Handler, cfg *config.Config, rateLimiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Session(cfg.Session),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)
	return middlewareChain(srv)
}

func loadDataset(cfg config.DatasetConfig, logger *slog.Logger) (*dataset.Dataset, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LoadTimeout)
	defer cancel()

	loader := dataset.NewLoader(
		dataset.WithSheet(cfg.Sheet),
		dataset.WithCacheDir(cfg.CacheDir),
		dataset.WithLogger(logger),
	)

	start := time.Now()
	ds, err := loader.Load(ctx, cfg.File)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded successfully", "records", ds.Len(), "duration", time.Since(start))
	return ds, nil
}

func logDatasetError(logger *slog.Logger, err error) {
	var (
		loadErr  *dataset.LoadError
		parseErr *dataset.ParseError
	)
	switch {
	case errors.As(err, &parseErr):
		logger.Error("dataset contains an invalid value",
			"line", parseErr.Line,
			"column", parseErr.Column,
			"value", parseErr.Value,
			"error", parseErr.Err,
		)
	case errors.As(err, &loadErr):
		logger.Error("dataset could not be loaded", "path", loadErr.Path, "error", err)
	default:
		logger.Error("failed to load dataset", "error", err)
	}
}

func cleanupLimiter(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(rateLimitIdle)
		}
	}
}
