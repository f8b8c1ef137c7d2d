package oracle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

const cacheKeyType = "oracle"

// Cached reuses fragments for byte-identical requests. Failed calls are
// never cached, and cache errors degrade to a miss.
type Cached struct {
	inner  Oracle
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Logger
}

// NewCached wraps inner with c. A ttl of zero uses [cache.TTLOracle].
func NewCached(inner Oracle, c cache.Cache, ttl time.Duration, logger *log.Logger) *Cached {
	if ttl == 0 {
		ttl = cache.TTLOracle
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{inner: inner, cache: c, ttl: ttl, logger: logger}
}

// Key returns the cache key for req.
func Key(req Request) string {
	return cache.Key(cacheKeyType, req)
}

// Synthesize returns a cached fragment or calls the wrapped oracle.
func (c *Cached) Synthesize(ctx context.Context, req Request) (graph.Graph, error) {
	key := Key(req)
	hooks := observability.Cache()

	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("oracle cache read failed", "err", err)
	}
	if hit {
		var g graph.Graph
		if err := json.Unmarshal(data, &g); err == nil {
			hooks.OnCacheHit(ctx, cacheKeyType)
			c.logger.Debug("oracle cache hit", "kind", req.Kind, "target", req.TargetNodeID)
			return g.Clone(), nil
		}
		_ = c.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	g, err := c.inner.Synthesize(ctx, req)
	if err != nil {
		return graph.Graph{}, err
	}

	// Structurally broken fragments are never cached.
	if err := validate.Struct(g); err != nil {
		return g, nil
	}
	if data, err := json.Marshal(g); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("oracle cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return g, nil
}

var _ Oracle = (*Cached)(nil)
