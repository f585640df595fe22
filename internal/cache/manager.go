package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tally_cache_hits_total",
		Help: "Cache reads that returned a stored value.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tally_cache_misses_total",
		Help: "Cache reads that fell through, including storage errors.",
	})
)

// Manager wraps the key/value store with JSON serialization and best-effort
// semantics: every operation degrades to a miss on error, so a cache failure
// can never fail the caller's request.
type Manager struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewManager(rdb *redis.Client, defaultTTL time.Duration) *Manager {
	return &Manager{rdb: rdb, ttl: defaultTTL}
}

// Get loads the value stored under key into dest. It reports false on a miss
// and on any storage or decode error.
func (m *Manager) Get(ctx context.Context, key string, dest any) bool {
	data, err := m.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get failed", "key", key, "error", err)
		}

		cacheMisses.Inc()

		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("cache decode failed", "key", key, "error", err)
		cacheMisses.Inc()

		return false
	}

	cacheHits.Inc()

	return true
}

// Set stores the JSON-encoded value under key with the given expiry. A
// non-positive ttl falls back to the manager's default. Failures are logged,
// never raised.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = m.ttl
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return false
	}

	if err := m.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
		return false
	}

	return true
}

// Invalidate deletes every key under the namespace and returns how many were
// removed. With an identifier the match loosens to any key containing it, so
// list and aggregate entries that embed the identifier as a filter parameter
// are cleared too. Best-effort: concurrent readers may still see entries the
// scan has not reached.
func (m *Manager) Invalidate(ctx context.Context, ns Namespace, identifier string) int {
	pattern := string(ns) + ":*"
	if identifier != "" {
		pattern = string(ns) + ":*" + identifier + "*"
	}

	var keys []string

	iter := m.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		slog.Warn("cache scan failed", "pattern", pattern, "error", err)
		return 0
	}

	if len(keys) == 0 {
		return 0
	}

	n, err := m.rdb.Del(ctx, keys...).Result()
	if err != nil {
		slog.Warn("cache delete failed", "pattern", pattern, "error", err)
		return 0
	}

	return int(n)
}
