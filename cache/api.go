package cache

// Cache is a bounded in-memory store of rendered list items keyed by item id.
// All methods are safe for concurrent use by multiple goroutines; a single
// mutex guards the map, the recency list, the counters and the instance
// registry, so every method is atomic with respect to the others.
//
// D is the raw item record; R is the caller-defined rendered content, which
// the cache stores and returns but never inspects.
type Cache[K comparable, D, R any] interface {
	// Get returns a snapshot of the entry for k. On hit it refreshes the
	// entry's access time and bumps RenderCount. Every call counts as one
	// request and either a hit or a miss.
	// An entry older than TTL that has not been swept yet is evicted and
	// reported as a miss.
	Get(k K) (Entry[D, R], bool)

	// Peek returns a snapshot of the entry for k without touching recency
	// or metrics.
	Peek(k K) (Entry[D, R], bool)

	// Set inserts or refreshes k with no owner.
	// It sweeps expired entries first and, if the store is still full,
	// evicts the least recently used entry.
	Set(k K, data D, rendered R)

	// SetOwned is Set on behalf of a registered instance. Writes for an
	// owner that is not currently registered are dropped.
	SetOwned(k K, data D, rendered R, owner InstanceID)

	// Has reports whether k is resident. No recency or metrics side effects.
	Has(k K) bool

	// Remove deletes k if present and returns true on success.
	// No sweep, no metrics.
	Remove(k K) bool

	// Clear drops all entries and resets the counters.
	// Registered instances stay registered.
	Clear()

	// Sweep removes every entry whose age exceeds TTL and returns how many
	// were removed. Each removal counts as an eviction.
	Sweep() int

	// Stats returns size, capacity, utilization and a metrics snapshot.
	Stats() Stats

	// Metrics returns a snapshot of the request/eviction counters.
	Metrics() MetricsSnapshot

	// Len returns the number of resident entries.
	Len() int

	// Register marks id as an active instance. Idempotent.
	Register(id InstanceID)

	// Unregister removes id from the active set and synchronously deletes
	// every entry it owns. Returns the number of entries released.
	// These removals are not evictions.
	Unregister(id InstanceID) int

	// Instances returns the number of active instances.
	Instances() int

	// Close marks the cache closed. Future operations are ignored.
	Close() error
}
