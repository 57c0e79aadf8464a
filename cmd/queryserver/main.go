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
	analyticsbatch "github.com/corpusql/corpusql/internal/analytics/collector"
	"github.com/corpusql/corpusql/internal/corpus"
	"github.com/corpusql/corpusql/internal/queryservice/cache"
	"github.com/corpusql/corpusql/internal/queryservice/handler"
	"github.com/corpusql/corpusql/internal/set"
	"github.com/corpusql/corpusql/pkg/config"
	"github.com/corpusql/corpusql/pkg/health"
	"github.com/corpusql/corpusql/pkg/kafka"
	"github.com/corpusql/corpusql/pkg/logger"
	"github.com/corpusql/corpusql/pkg/metrics"
	"github.com/corpusql/corpusql/pkg/middleware"
	"github.com/corpusql/corpusql/pkg/postgres"
	"github.com/corpusql/corpusql/pkg/ratelimit"
	pkgredis "github.com/corpusql/corpusql/pkg/redis"
	"github.com/corpusql/corpusql/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	set.GallopThreshold = cfg.Set.GallopThreshold
	slog.Info("starting query service", "port", cfg.Server.Port, "corpus_path", cfg.Corpus.Path)

	m := metrics.New()
	set.OnDispatch = func(strategy string) {
		m.GallopDispatchTotal.WithLabelValues(strategy).Inc()
	}

	loadStart := time.Now()
	c, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		slog.Error("failed to load corpus", "error", err, "path", cfg.Corpus.Path)
		os.Exit(1)
	}
	loadLatency := time.Since(loadStart)
	slog.Info("corpus loaded", "tokens", c.Len(), "latency_ms", loadLatency.Milliseconds())

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.QueryEvents)

	loadEventProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
	defer loadEventProducer.Close()
	loadBatcher := analyticsbatch.NewBatchCollector(loadEventProducer, 10, 30*time.Second)
	loadBatcher.Start(ctx)
	defer loadBatcher.Close()
	loadBatcher.Track("corpus_load", analytics.CorpusLoadEvent{
		Type:       analytics.EventCorpusLoad,
		Path:       cfg.Corpus.Path,
		TokenCount: c.Len(),
		LatencyMs:  loadLatency.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	})

	agg := analytics.NewAggregator(nil)
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, analytics.HandleEvent(agg))
	agg.SetConsumer(analyticsConsumer)
	analyticsH := analytics.NewHandler(agg)

	go func() {
		if err := agg.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started")

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

	checker := health.NewChecker()
	checker.Register("corpus", func(ctx context.Context) health.ComponentHealth {
		if c.Len() > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d tokens loaded", c.Len())}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "empty corpus"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(c, queryCache, collector, m, cfg.Corpus.DefaultLimit, cfg.Corpus.MaxResultLimit, cfg.Corpus.StrictLookup, cfg.Server.QueryTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/query", h.Query)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	limiter := ratelimit.New(time.Minute)

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RateLimit(limiter, cfg.Server.RequestsPerMinute)(chain)
	chain = middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:       86400,
	})(chain)
	chain = middleware.Timeout(cfg.Server.QueryTimeout)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

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

	slog.Info("query service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("query service stopped")
}
