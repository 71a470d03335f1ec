// Package cache provides the bounded store behind list virtualization: a
// generic map from item id to rendered output with LRU+TTL eviction,
// hit/miss counters and an instance registry for shared use.
//
// Design
//
//   - Concurrency: one mutex guards the map, the recency list, the counters
//     and the registry. Set's sweep-evict-insert sequence and Unregister's
//     cascade are therefore atomic with respect to every other call.
//
//   - Storage: map[K]*node plus an intrusive MRU↔LRU doubly linked list.
//     Get and Set are O(1) apart from the TTL sweep that precedes every Set,
//     which is a linear walk. Lists are small (hundreds of entries).
//
//   - Eviction: when full, Set evicts the list tail. The ordering is owned by
//     the policy package (LRU by default), so the tail is the entry with the
//     oldest access time.
//
//   - TTL: an entry is stale when now - LastAccessed > TTL. Stale entries are
//     removed before every Set, by Sweep (see Sweeper for the periodic
//     schedule), or when Get finds one. All three count as evictions.
//
//   - Instances: a shared cache registers one InstanceID per consumer.
//     Unregister deletes every entry the instance owns without touching the
//     others.
//
//   - Metrics: counters are read via Metrics/Stats. Options.Metrics receives
//     Hit/Miss/Evict/Size/Instances signals for export (see metrics/prom).
//
// Basic usage
//
//	c := cache.New[string, Task, string](cache.Options[string, Task, string]{MaxSize: 100})
//	if e, ok := c.Get(task.ID); ok {
//	    return e.Rendered
//	}
//	c.Set(task.ID, task, render(task))
//
// Periodic sweep
//
//	sw := cache.StartSweeper(c, cache.SweepInterval(ttl), nil)
//	defer sw.Stop()
package cache
