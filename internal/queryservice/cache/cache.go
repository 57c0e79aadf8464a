package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/corpusql/corpusql/internal/queryservice/exec"
	"github.com/corpusql/corpusql/pkg/config"
	pkgredis "github.com/corpusql/corpusql/pkg/redis"
	"github.com/corpusql/corpusql/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "query:"

// QueryCache caches query results in Redis, keyed by the exact query text
// and limit, and deduplicates concurrent identical requests with a
// singleflight group so a cache stampede only evaluates the query once. A
// circuit breaker wraps every Redis call: once Redis starts failing
// repeatedly, QueryCache stops waiting on it per request and falls straight
// through to computeFn until the breaker probes Redis again.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("query-cache-redis", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, queryText string, limit int) (*exec.Result, bool) {
	key := c.buildKey(queryText, limit)
	var data string
	err := c.breaker.Execute(func() error {
		v, err := c.client.Get(ctx, key)
		data = v
		return err
	})
	if err != nil {
		if !pkgredis.IsNilError(err) && !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result exec.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "err", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", queryText, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, queryText string, limit int, result *exec.Result) {
	key := c.buildKey(queryText, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns a cached result, or runs computeFn to produce and
// cache one. Concurrent callers for the same (queryText, limit) share a
// single computeFn invocation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	queryText string,
	limit int,
	computeFn func() (*exec.Result, error),
) (*exec.Result, bool, error) {
	if result, ok := c.Get(ctx, queryText, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(queryText, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, queryText, limit); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, queryText, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*exec.Result), false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) error {
	pattern := keyPrefix + "*"
	deleted, err := c.client.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the exact query text (not normalized — unlike a
// bag-of-terms document search, two syntactically different positional
// queries are not guaranteed equivalent, so the cache key must be exact).
func (c *QueryCache) buildKey(queryText string, limit int) string {
	raw := fmt.Sprintf("%s:limit=%d", queryText, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
