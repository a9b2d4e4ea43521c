// Package main is the entry point for the carbonyx API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"carbonyx/internal/config"
	"carbonyx/internal/domain/auth"
	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/domain/factors"
	v1 "carbonyx/internal/infrastructure/http/v1"
	"carbonyx/internal/infrastructure/metrics"
	"carbonyx/internal/infrastructure/storage"
	"carbonyx/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting carbonyx server", "driver", cfg.DBDriver, "env", cfg.AppEnv)

	// --- Storage ---
	stores, err := storage.Open(ctx, storage.Options{
		Driver:           cfg.DBDriver,
		DatabaseURL:      cfg.DatabaseURL,
		SQLitePath:       cfg.SQLitePath,
		MaxConns:         cfg.DBMaxConns,
		StatementTimeout: cfg.StatementTimeout,
	})
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warnw("failed to close storage", "error", err)
		}
	}()

	if cfg.AutoMigrate {
		if err := stores.Migrate(ctx); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
		log.Info("migrations applied")
	}

	// --- JWT Service ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.Issuer = cfg.JWTIssuer
	jwtService, err := auth.NewJWTService(jwtConfig)
	if err != nil {
		log.Fatalw("failed to configure jwt", "error", err)
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)
	metrics.RegisterPool(registry, stores.Driver, stores.PoolStats)

	// --- Chart palette (hot reloaded) ---
	palette, err := config.NewPaletteHolder(cfg.ChartConfig)
	if err != nil {
		log.Fatalw("failed to load chart config", "error", err)
	}

	// --- Services ---
	factorService := factors.NewService(stores.Factors, stores.TxManager)
	reportService := emissions.NewService(stores.Emissions,
		emissions.WithPaletteSource(palette.Get),
		emissions.WithTimeout(cfg.ReportTimeout),
		emissions.WithYears(cfg.ReportYears),
		emissions.WithRecorder(appMetrics),
	)
	ledger := emissions.NewLedger(factorService, stores.Emissions, nil)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		Reports:      reportService,
		Factors:      factorService,
		Ledger:       ledger,
		Ping:         stores.Ping,
		Metrics:      appMetrics,
		Gatherer:     registry,
		Debug:        cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ReportTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
