package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/PratikDhanave/funnel-analytics-service/internal/analytics"
	"github.com/PratikDhanave/funnel-analytics-service/internal/config"
	"github.com/PratikDhanave/funnel-analytics-service/internal/httpserver"
	"github.com/PratikDhanave/funnel-analytics-service/internal/logging"
	"github.com/PratikDhanave/funnel-analytics-service/internal/store"
)

// main boots the service: config → logger → DB → schema → HTTP server.
func main() {
	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("error loading .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Connect to the configured event store; the handle is owned here and injected below.
	db, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open event store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	// Ensure required tables/indexes exist so a fresh database is enough.
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	events := store.NewInstrumentedStore(db, registry)
	router := httpserver.NewRouter(cfg, httpserver.Deps{
		Store:      events,
		Aggregator: analytics.NewAggregator(events),
		Logger:     logger,
		Registry:   registry,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr), zap.String("driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
