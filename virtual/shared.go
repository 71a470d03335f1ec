package virtual

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/IvanBrykalov/rendercache/cache"
	"github.com/IvanBrykalov/rendercache/internal/singleflight"
	"github.com/IvanBrykalov/rendercache/warm"
)

// Shared is one process-wide cache multiplexed across many lists.
// Entries are de-duplicated by id across lists; the last writer owns an entry.
// Metrics are global to the store.
type Shared[K comparable, D, R any] struct {
	c       cache.Cache[K, D, R]
	warmer  *warm.Warmer[K, D, R]
	sweeper *cache.Sweeper
	sf      singleflight.Group[K, R]
	log     *slog.Logger
}

// NewShared builds the shared cache and starts its periodic sweep.
// MaxSize defaults to DefaultSharedMaxSize; metrics are always collected.
func NewShared[K comparable, D, R any](opt Options[K, D, R]) *Shared[K, D, R] {
	opt.DisableMetrics = false
	parts := build(opt, DefaultSharedMaxSize, "shared")
	return &Shared[K, D, R]{
		c:       parts.c,
		warmer:  parts.warmer,
		sweeper: parts.sweeper,
		log:     parts.log,
	}
}

// Attach registers a new consumer under a freshly minted instance id.
func (s *Shared[K, D, R]) Attach() *Handle[K, D, R] {
	id := cache.NewInstanceID()
	s.c.Register(id)
	s.log.Debug("instance attached", "instance", id, "instances", s.c.Instances())
	return &Handle[K, D, R]{s: s, id: id}
}

// Stats returns occupancy and global metrics.
func (s *Shared[K, D, R]) Stats() cache.Stats { return s.c.Stats() }

// Metrics returns the global counters; InstanceCount is the number of
// attached handles.
func (s *Shared[K, D, R]) Metrics() cache.MetricsSnapshot { return s.c.Metrics() }

// Close stops the periodic sweep and closes the store. Handles become inert.
func (s *Shared[K, D, R]) Close() error {
	s.sweeper.Stop()
	s.log.Debug("shared cache closed")
	return s.c.Close()
}

// Handle is one list's attachment to a Shared cache.
// After Detach every method is a no-op (reads miss, writes are dropped);
// attach again to get a new instance id.
type Handle[K comparable, D, R any] struct {
	s        *Shared[K, D, R]
	id       cache.InstanceID
	detached atomic.Bool
}

// ID returns the handle's instance id.
func (h *Handle[K, D, R]) ID() cache.InstanceID { return h.id }

// Detached reports whether Detach has been called.
func (h *Handle[K, D, R]) Detached() bool { return h.detached.Load() }

// Get returns the shared entry for id, whoever wrote it.
func (h *Handle[K, D, R]) Get(id K) (cache.Entry[D, R], bool) {
	if h.detached.Load() {
		return cache.Entry[D, R]{}, false
	}
	return h.s.c.Get(id)
}

// Set stores rendered content owned by this handle.
func (h *Handle[K, D, R]) Set(id K, data D, rendered R) {
	if h.detached.Load() {
		return
	}
	h.s.c.SetOwned(id, data, rendered, h.id)
}

// Clear drops every entry of the shared store and resets the global metrics.
// Other handles stay attached.
func (h *Handle[K, D, R]) Clear() {
	if h.detached.Load() {
		return
	}
	h.s.c.Clear()
	h.s.log.Debug("shared cache cleared", "instance", h.id)
}

// Warm renders and caches items beyond vr on behalf of this handle.
func (h *Handle[K, D, R]) Warm(items []D, vr warm.Range, dir warm.Direction, render warm.RenderFunc[D, R]) int {
	if h.detached.Load() || h.s.warmer == nil {
		return 0
	}
	return h.s.warmer.Warm(items, vr, dir, render, h.id)
}

// GetOrRender returns the shared content for id or renders and stores it
// as owned by this handle. Concurrent misses across handles share one render.
func (h *Handle[K, D, R]) GetOrRender(ctx context.Context, id K, data D, render func(context.Context) (R, error)) (R, error) {
	if h.detached.Load() {
		return render(ctx)
	}
	return getOrRender(ctx, h.s.c, &h.s.sf, id, data, h.id, render)
}

// Stats returns the shared store's stats.
func (h *Handle[K, D, R]) Stats() cache.Stats { return h.s.Stats() }

// Metrics returns the shared store's metrics.
func (h *Handle[K, D, R]) Metrics() cache.MetricsSnapshot { return h.s.Metrics() }

// Detach unregisters the handle and releases every entry it owns.
// It returns the number of entries released; later calls return 0.
func (h *Handle[K, D, R]) Detach() int {
	if !h.detached.CompareAndSwap(false, true) {
		return 0
	}
	released := h.s.c.Unregister(h.id)
	h.s.log.Debug("instance detached", "instance", h.id, "released", released, "instances", h.s.c.Instances())
	return released
}
