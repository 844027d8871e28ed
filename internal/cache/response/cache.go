// Package response caches fully processed answers keyed by tenant, intent,
// and normalized query. It is layered over two tiers: the shared store and
// a process-local fallback used while the shared store is unreachable. The
// cache is an optimization, never a correctness dependency; no operation
// here fails the request.
package response

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/db"
	"github.com/voceria-ai/voceria/internal/domain"
	"github.com/voceria-ai/voceria/internal/metrics"
)

// Stats summarizes cache effectiveness since process start.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is the two-tier response cache.
type Cache struct {
	remote db.KVStore // shared tier, may be nil when running memory-only
	local  db.KVStore // fallback tier
	prefix string
	policy TTLPolicy
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache over the shared store and the local fallback. remote
// may be nil; every operation then uses only the local tier.
func New(remote, local db.KVStore, prefix string, policy TTLPolicy, logger *zap.Logger) *Cache {
	return &Cache{
		remote: remote,
		local:  local,
		prefix: prefix,
		policy: policy,
		logger: logger,
	}
}

// Get returns the cached response for the triple, or false on a miss.
// Shared-store failures degrade to the local tier and are logged, never
// surfaced.
func (c *Cache) Get(ctx context.Context, tenantID, query string, intent domain.Intent) ([]byte, bool) {
	key := cacheKey(c.prefix, tenantID, query, intent)

	if c.remote != nil {
		value, err := c.remote.Get(ctx, key)
		switch {
		case err == nil:
			metrics.ResponseCacheTotal.WithLabelValues("remote", "hit").Inc()
			c.hits.Add(1)
			return value, true
		case errors.Is(err, db.ErrKeyNotFound):
			metrics.ResponseCacheTotal.WithLabelValues("remote", "miss").Inc()
			c.misses.Add(1)
			return nil, false
		default:
			c.logger.Warn("shared cache store unavailable, using local tier",
				zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}

	value, err := c.local.Get(ctx, key)
	if err != nil {
		metrics.ResponseCacheTotal.WithLabelValues("local", "miss").Inc()
		c.misses.Add(1)
		return nil, false
	}
	metrics.ResponseCacheTotal.WithLabelValues("local", "hit").Inc()
	c.hits.Add(1)
	return value, true
}

// Put stores a response under the per-intent TTL policy. A zero TTL
// suppresses the write entirely. ttlOverride, when positive, replaces the
// policy value. Write failures degrade to the local tier.
func (c *Cache) Put(ctx context.Context, tenantID, query string, value []byte, intent domain.Intent, ttlOverride time.Duration) {
	ttl := c.policy.For(intent)
	if ttlOverride > 0 {
		ttl = ttlOverride
	}
	if ttl == NeverCache {
		c.logger.Debug("intent excluded from caching",
			zap.String("tenant_id", tenantID), zap.String("intent", string(intent)))
		return
	}

	key := cacheKey(c.prefix, tenantID, query, intent)

	if c.remote != nil {
		err := c.remote.SetWithTTL(ctx, key, value, ttl)
		if err == nil {
			return
		}
		c.logger.Warn("shared cache write failed, using local tier",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}

	if err := c.local.SetWithTTL(ctx, key, value, ttl); err != nil {
		c.logger.Warn("local cache write failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}

// InvalidateTenant removes every cached response for the tenant across
// both tiers and returns the number of removed keys. Zero matches is not
// an error.
func (c *Cache) InvalidateTenant(ctx context.Context, tenantID string) (int, error) {
	return c.invalidate(ctx, tenantPrefix(c.prefix, tenantID))
}

// InvalidateIntent removes the tenant's cached responses for one intent.
func (c *Cache) InvalidateIntent(ctx context.Context, tenantID string, intent domain.Intent) (int, error) {
	return c.invalidate(ctx, intentPrefix(c.prefix, tenantID, intent))
}

func (c *Cache) invalidate(ctx context.Context, prefix string) (int, error) {
	total := 0

	if c.remote != nil {
		n, err := c.remote.DeleteMatching(ctx, prefix)
		if err != nil {
			c.logger.Warn("shared cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		} else {
			total += n
		}
	}

	n, err := c.local.DeleteMatching(ctx, prefix)
	if err != nil {
		return total, err
	}
	return total + n, nil
}

// Stats reports hit/miss counters accumulated since process start.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	s := Stats{Hits: hits, Misses: misses}
	if hits+misses > 0 {
		s.HitRate = float64(hits) / float64(hits+misses)
	}
	return s
}
