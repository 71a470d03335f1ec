package cache

import (
	"time"

	"github.com/IvanBrykalov/rendercache/policy"
)

// Defaults applied by New when the corresponding Options field is zero.
const (
	DefaultMaxSize = 100
	DefaultTTL     = 5 * time.Minute

	// MaxSweepInterval caps the period of the background sweep.
	MaxSweepInterval = 60 * time.Second
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictLRU: removed to make room for an insert at capacity.
	EvictLRU EvictReason = iota
	// EvictTTL: older than TTL (sweep or expired read).
	EvictTTL
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	default:
		return "lru"
	}
}

// Metrics exposes cache-level observability hooks for an external backend.
// A NoopMetrics implementation is provided and used by default.
// Hooks are called under the store lock; keep them cheap.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
	Instances(n int)
}

// Clock provides the current time; useful for deterministic tests.
type Clock interface{ Now() time.Time }

// Options configures the cache behavior. Zero values are safe;
// defaults are applied in New():
//   - MaxSize == 0 => DefaultMaxSize
//   - TTL == 0     => DefaultTTL
//   - nil Policy   => LRU
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => time.Now
//
// Negative MaxSize or TTL are not rejected; they produce degenerate but safe
// behavior (every insert evicts, every entry is stale).
type Options[K comparable, D, R any] struct {
	// MaxSize is the entry count limit.
	MaxSize int

	// TTL is the maximum time since last access before an entry is stale.
	TTL time.Duration

	// DisableMetrics turns off the hit/miss/eviction counters and the
	// Metrics hooks.
	DisableMetrics bool

	// Policy orders the recency list; nil => LRU.
	Policy policy.Policy[K]

	// OnEvict is called for every LRU or TTL eviction under the store lock.
	// It is not called for Remove, Clear or Unregister.
	OnEvict func(k K, e Entry[D, R], reason EvictReason)
	Metrics Metrics

	Clock Clock
}

// SweepInterval returns the period of the background sweep for ttl:
// min(ttl/2, MaxSweepInterval). A non-positive result means no sweep task.
func SweepInterval(ttl time.Duration) time.Duration {
	return min(ttl/2, MaxSweepInterval)
}
