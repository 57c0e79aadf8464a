// Command analytics starts the standalone analytics aggregation service.
//
// It consumes query-analytics events from Kafka (the same topic
// cmd/queryserver publishes to), aggregates them in memory (total queries,
// latency percentiles, cache hit and miss counts, zero-result counts, top
// queries),
// persists periodic snapshots to Postgres, and exposes an HTTP API at
// GET /api/v1/analytics for dashboards. Running it as a separate process
// from cmd/queryserver lets aggregation and snapshot persistence scale and
// fail independently of query serving.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
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

	"github.com/corpusql/corpusql/internal/analytics"
	"github.com/corpusql/corpusql/internal/analytics/aggregator"
	"github.com/corpusql/corpusql/pkg/config"
	"github.com/corpusql/corpusql/pkg/health"
	"github.com/corpusql/corpusql/pkg/kafka"
	"github.com/corpusql/corpusql/pkg/logger"
	"github.com/corpusql/corpusql/pkg/middleware"
	"github.com/corpusql/corpusql/pkg/postgres"
	"github.com/corpusql/corpusql/pkg/resilience"
)

// main boots the standalone analytics service: it creates a Kafka consumer for
// query events, starts the in-memory aggregator, registers a health checker,
// and serves the HTTP API. Graceful shutdown is triggered by SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator(nil)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, analytics.HandleEvent(agg))
	agg.SetConsumer(consumer)

	go func() {
		if err := agg.Start(ctx); err != nil {
			slog.Error("aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.QueryEvents)

	var snapshotStore *aggregator.Store
	var pgClient *postgres.Client
	err = resilience.Retry(ctx, "postgres.connect", resilience.RetryConfig{}, func() error {
		var err error
		pgClient, err = postgres.New(cfg.Postgres)
		return err
	})
	if err != nil {
		slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
	} else {
		defer pgClient.DB.Close()
		snapshotStore = aggregator.NewStore(pgClient)
		snapshotStore.StartPeriodicSave(ctx, agg, 5*time.Minute)
		slog.Info("analytics snapshot persistence enabled")
	}

	// HTTP API.
	analyticsHandler := analytics.NewHandler(agg)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if snapshotStore == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
