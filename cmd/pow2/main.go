package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Pow2/internal/api"
	"github.com/MikeSquared-Agency/Pow2/internal/config"
	"github.com/MikeSquared-Agency/Pow2/internal/engine"
	"github.com/MikeSquared-Agency/Pow2/internal/factors/catalog"
	"github.com/MikeSquared-Agency/Pow2/internal/hermes"
	"github.com/MikeSquared-Agency/Pow2/internal/metrics"
	"github.com/MikeSquared-Agency/Pow2/internal/season"
	"github.com/MikeSquared-Agency/Pow2/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := catalog.NewRegistry()
	sources := season.Chain{season.DirSource{Dir: cfg.Seasons.Dir}}

	// Database (optional)
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		db = pg
		// Stored seasons override files of the same slug.
		sources = append(season.Chain{store.SeasonSource{Store: pg}}, sources...)
		logger.Info("connected to database")
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	m := metrics.New()
	loader := season.NewLoader(sources, season.NewParser(registry, cfg.Seasons.DefaultTZHours))
	eng := engine.New(loader, registry, m, engine.Options{
		MaxBatchSize: cfg.Engine.MaxBatchSize,
		Store:        db,
		Record:       cfg.Database.RecordCalculations,
	}, logger)

	if hermesClient != nil {
		listener := engine.NewListener(eng, hermesClient, cfg.RequestTimeout(), logger)
		if err := listener.Start(); err != nil {
			logger.Warn("failed to subscribe to cpu requests", "error", err)
		} else {
			logger.Info("listening for cpu requests", "subject", hermes.SubjectCPURequest)
		}
	}

	// API server
	router := api.NewRouter(eng, db, hermesClient, m, cfg.RequestTimeout(), cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(m),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port, "seasons_dir", cfg.Seasons.Dir)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
