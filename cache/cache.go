package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/rendercache/policy"
	"github.com/IvanBrykalov/rendercache/policy/lru"
)

// store is the single-lock implementation of Cache.
// The map, the recency list, the counters and the registry are all guarded
// by mu, which makes Set's sweep-evict-insert and Unregister's cascade atomic.
type store[K comparable, D, R any] struct {
	// ---- guarded by mu ----
	mu     sync.Mutex
	m      map[K]*node[K, D, R]
	head   *node[K, D, R] // MRU
	tail   *node[K, D, R] // LRU
	len    int
	max    int
	ttl    time.Duration
	pol    policy.StorePolicy[K]
	stats  counters
	active map[InstanceID]struct{}

	opt    Options[K, D, R]
	closed atomic.Bool
}

// New constructs a cache with the provided Options.
// Defaults:
//   - MaxSize == 0 -> DefaultMaxSize
//   - TTL == 0     -> DefaultTTL
//   - nil Metrics  -> NoopMetrics
//   - nil Policy   -> LRU
func New[K comparable, D, R any](opt Options[K, D, R]) Cache[K, D, R] {
	if opt.MaxSize == 0 {
		opt.MaxSize = DefaultMaxSize
	}
	if opt.TTL == 0 {
		opt.TTL = DefaultTTL
	}
	if opt.Metrics == nil || opt.DisableMetrics {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K]()
	}

	capHint := opt.MaxSize
	if capHint < 0 {
		capHint = 1
	}
	s := &store[K, D, R]{
		m:      make(map[K]*node[K, D, R], capHint),
		max:    opt.MaxSize,
		ttl:    opt.TTL,
		active: make(map[InstanceID]struct{}),
		opt:    opt,
	}
	s.pol = opt.Policy.New(storeHooks[K, D, R]{s: s})
	return s
}

// ---- Cache[K,D,R] implementation ----

func (s *store[K, D, R]) Get(k K) (Entry[D, R], bool) {
	if s.closed.Load() {
		return Entry[D, R]{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n, ok := s.m[k]
	if !ok {
		s.missLocked()
		return Entry[D, R]{}, false
	}
	if s.expiredLocked(n, now) {
		s.evictNode(n, EvictTTL)
		s.opt.Metrics.Size(s.len)
		s.missLocked()
		return Entry[D, R]{}, false
	}

	n.lastAccessed = now
	n.renderCount++
	s.pol.OnGet(n)
	s.hitLocked()
	return n.entry(), true
}

func (s *store[K, D, R]) Peek(k K) (Entry[D, R], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		return Entry[D, R]{}, false
	}
	return n.entry(), true
}

func (s *store[K, D, R]) Set(k K, data D, rendered R) {
	s.SetOwned(k, data, rendered, "")
}

func (s *store[K, D, R]) SetOwned(k K, data D, rendered R, owner InstanceID) {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner != "" {
		if _, ok := s.active[owner]; !ok {
			return
		}
	}

	now := s.now()
	s.sweepLocked(now)

	if n, ok := s.m[k]; ok {
		// Refresh in place: the entry is replaced, not evicted.
		n.data = data
		n.rendered = rendered
		n.lastAccessed = now
		n.renderCount = 0
		n.owner = owner
		s.pol.OnUpdate(n)
		s.opt.Metrics.Size(s.len)
		return
	}

	// Make room first so the store never exceeds max.
	for s.len >= s.max {
		tail := s.back()
		if tail == nil {
			break
		}
		s.evictNode(tail, EvictLRU)
	}

	n := &node[K, D, R]{
		key:          k,
		data:         data,
		rendered:     rendered,
		lastAccessed: now,
		owner:        owner,
	}
	s.m[k] = n
	s.pol.OnAdd(n)
	s.opt.Metrics.Size(s.len)
}

func (s *store[K, D, R]) Has(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[k]
	return ok
}

func (s *store[K, D, R]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		return false
	}
	s.dropNode(n)
	return true
}

func (s *store[K, D, R]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[K]*node[K, D, R], len(s.m))
	s.head, s.tail = nil, nil
	s.len = 0
	s.pol = s.opt.Policy.New(storeHooks[K, D, R]{s: s})
	s.stats.reset()
	s.opt.Metrics.Size(0)
}

func (s *store[K, D, R]) Sweep() int {
	if s.closed.Load() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sweepLocked(s.now())
	if removed > 0 {
		s.opt.Metrics.Size(s.len)
	}
	return removed
}

func (s *store[K, D, R]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Size:    s.len,
		MaxSize: s.max,
		Metrics: s.stats.snapshot(len(s.active)),
	}
	if s.max > 0 {
		st.UtilizationRate = float64(s.len) / float64(s.max) * 100
	}
	return st
}

func (s *store[K, D, R]) Metrics() MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.snapshot(len(s.active))
}

func (s *store[K, D, R]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.len
}

// Close marks the cache as closed. Future Get/Set/Sweep calls are ignored.
// The background sweep is owned by the caller (see Sweeper).
func (s *store[K, D, R]) Close() error {
	s.closed.Store(true)
	return nil
}

// -------------------- internals (mu held) --------------------

func (s *store[K, D, R]) now() time.Time {
	if s.opt.Clock != nil {
		return s.opt.Clock.Now()
	}
	return time.Now()
}

// expiredLocked is the single staleness predicate: age > ttl.
func (s *store[K, D, R]) expiredLocked(n *node[K, D, R], now time.Time) bool {
	return now.Sub(n.lastAccessed) > s.ttl
}

// sweepLocked walks the whole list from LRU to MRU and evicts stale entries.
// The full walk keeps the sweep independent of the active policy's ordering.
func (s *store[K, D, R]) sweepLocked(now time.Time) int {
	removed := 0
	for n := s.tail; n != nil; {
		prev := n.prev
		if s.expiredLocked(n, now) {
			s.evictNode(n, EvictTTL)
			removed++
		}
		n = prev
	}
	return removed
}

func (s *store[K, D, R]) hitLocked() {
	if s.opt.DisableMetrics {
		return
	}
	s.stats.hits++
	s.opt.Metrics.Hit()
}

func (s *store[K, D, R]) missLocked() {
	if s.opt.DisableMetrics {
		return
	}
	s.stats.misses++
	s.opt.Metrics.Miss()
}

// dropNode unlinks n and deletes it from the map without any accounting.
func (s *store[K, D, R]) dropNode(n *node[K, D, R]) {
	s.pol.OnRemove(n)
	s.removeNode(n)
	delete(s.m, n.key)
}

// evictNode removes the node, counts the eviction and calls OnEvict.
func (s *store[K, D, R]) evictNode(n *node[K, D, R], reason EvictReason) {
	s.dropNode(n)
	if !s.opt.DisableMetrics {
		s.stats.evictions++
	}
	s.opt.Metrics.Evict(reason)
	if cb := s.opt.OnEvict; cb != nil {
		cb(n.key, n.entry(), reason)
	}
}
