package virtual

import (
	"context"
	"log/slog"

	"github.com/IvanBrykalov/rendercache/cache"
	"github.com/IvanBrykalov/rendercache/internal/singleflight"
	"github.com/IvanBrykalov/rendercache/warm"
)

// Private is a cache owned by a single list.
// It must be closed when the list is torn down.
type Private[K comparable, D, R any] struct {
	c       cache.Cache[K, D, R]
	warmer  *warm.Warmer[K, D, R]
	sweeper *cache.Sweeper
	sf      singleflight.Group[K, R]
	log     *slog.Logger
}

// NewPrivate builds a private cache and starts its periodic sweep.
// MaxSize defaults to DefaultPrivateMaxSize.
func NewPrivate[K comparable, D, R any](opt Options[K, D, R]) *Private[K, D, R] {
	parts := build(opt, DefaultPrivateMaxSize, "private")
	return &Private[K, D, R]{
		c:       parts.c,
		warmer:  parts.warmer,
		sweeper: parts.sweeper,
		log:     parts.log,
	}
}

// Get returns the cached entry for id and records a hit or a miss.
func (p *Private[K, D, R]) Get(id K) (cache.Entry[D, R], bool) { return p.c.Get(id) }

// Set stores the rendered content for id. It may sweep and evict.
func (p *Private[K, D, R]) Set(id K, data D, rendered R) { p.c.Set(id, data, rendered) }

// Has reports whether id is cached without touching recency or metrics.
func (p *Private[K, D, R]) Has(id K) bool { return p.c.Has(id) }

// Remove deletes id and reports whether it was cached.
func (p *Private[K, D, R]) Remove(id K) bool { return p.c.Remove(id) }

// Clear drops every entry and resets metrics.
func (p *Private[K, D, R]) Clear() { p.c.Clear() }

// Warm renders and caches the items just beyond vr in direction dir.
// It returns the number of items rendered.
func (p *Private[K, D, R]) Warm(items []D, vr warm.Range, dir warm.Direction, render warm.RenderFunc[D, R]) int {
	if p.warmer == nil {
		return 0
	}
	return p.warmer.Warm(items, vr, dir, render, "")
}

// GetOrRender returns the cached content for id or renders and stores it.
func (p *Private[K, D, R]) GetOrRender(ctx context.Context, id K, data D, render func(context.Context) (R, error)) (R, error) {
	return getOrRender(ctx, p.c, &p.sf, id, data, "", render)
}

// Stats returns occupancy and metrics.
func (p *Private[K, D, R]) Stats() cache.Stats {
	st := p.c.Stats()
	st.Metrics.InstanceCount = 1
	return st
}

// Metrics returns the hit/miss/eviction counters. A private cache always has
// exactly one consumer.
func (p *Private[K, D, R]) Metrics() cache.MetricsSnapshot {
	m := p.c.Metrics()
	m.InstanceCount = 1
	return m
}

// Close stops the periodic sweep and closes the store.
func (p *Private[K, D, R]) Close() error {
	p.sweeper.Stop()
	p.log.Debug("private cache closed")
	return p.c.Close()
}
