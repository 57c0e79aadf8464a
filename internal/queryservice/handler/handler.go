package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/corpusql/corpusql/internal/analytics"
	"github.com/corpusql/corpusql/internal/corpus"
	"github.com/corpusql/corpusql/internal/queryservice/cache"
	"github.com/corpusql/corpusql/internal/queryservice/exec"
	cqerrors "github.com/corpusql/corpusql/pkg/errors"
	"github.com/corpusql/corpusql/pkg/logger"
	"github.com/corpusql/corpusql/pkg/metrics"
	"github.com/corpusql/corpusql/pkg/middleware"
	"github.com/corpusql/corpusql/pkg/resilience"
	"github.com/corpusql/corpusql/pkg/tracing"
)

// Handler serves the query-service HTTP surface: run a query against the
// loaded corpus, report cache stats, and invalidate the cache.
type Handler struct {
	corpus       *corpus.Corpus
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	strict       bool
	queryTimeout time.Duration
	logger       *slog.Logger
}

func New(c *corpus.Corpus, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int, strict bool, queryTimeout time.Duration) *Handler {
	return &Handler{
		corpus:       c,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		strict:       strict,
		queryTimeout: queryTimeout,
		logger:       slog.Default().With("component", "query-handler"),
	}
}

// Query handles GET /api/v1/query?q=<text>&limit=<n>.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	queryText := r.URL.Query().Get("q")
	if queryText == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	spanCtx, span := tracing.StartSpan(ctx, "query.compute", middleware.GetRequestID(ctx))
	span.SetAttr("query", queryText)
	span.SetAttr("limit", limit)

	compute := func() (*exec.Result, error) {
		var result *exec.Result
		err := resilience.WithTimeout(spanCtx, h.queryTimeout, "query.compute", func(context.Context) error {
			r, err := exec.Run(h.corpus, queryText, limit, h.strict)
			result = r
			return err
		})
		return result, err
	}

	var result *exec.Result
	var err error
	cacheHit := false

	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, queryText, limit, compute)
	} else {
		result, err = compute()
	}

	span.End()
	if err != nil {
		span.SetAttr("error", err.Error())
	} else {
		span.SetAttr("match_count", result.MatchCount)
	}
	span.Log()

	if err != nil {
		status, message := classifyError(err)
		log.Warn("query failed", "query", queryText, "error", err)
		h.writeError(w, status, message)
		if h.metrics != nil {
			h.metrics.QueriesTotal.WithLabelValues(outcomeFor(status)).Inc()
		}
		return
	}

	latencyMs := time.Since(start).Milliseconds()

	log.Info("query completed",
		"query", queryText,
		"match_count", result.MatchCount,
		"returned", len(result.Matches),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)

	if h.metrics != nil {
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		if h.cache != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
		h.metrics.QueryLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		h.metrics.MatchesReturned.WithLabelValues().Observe(float64(len(result.Matches)))
		h.metrics.ClausesPerQuery.Observe(float64(result.ClauseLen))
		outcome := "matched"
		if result.MatchCount == 0 {
			outcome = "zero_result"
		}
		h.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	}

	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		h.collector.Track(analytics.QueryEvent{
			Type:       eventType,
			QueryText:  queryText,
			ClauseLen:  result.ClauseLen,
			MatchCount: result.MatchCount,
			Returned:   len(result.Matches),
			LatencyMs:  latencyMs,
			CacheHit:   cacheHit,
			Strict:     h.strict,
			Timestamp:  time.Now().UTC(),
			RequestID:  middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"corpus_len": h.corpus.Len(),
	})
}

func classifyError(err error) (int, string) {
	return cqerrors.HTTPStatusCode(err), err.Error()
}

func outcomeFor(status int) string {
	if status >= 500 {
		return "error"
	}
	return "compile_error"
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
