package cache

import "time"

// Entry is a point-in-time copy of a cached item.
type Entry[D, R any] struct {
	Data     D
	Rendered R

	// LastAccessed is set on creation, refresh and every Get hit.
	// It drives both LRU order and TTL expiry.
	LastAccessed time.Time

	// RenderCount is the number of times the entry was served by Get.
	RenderCount uint64

	// Owner is the instance that last wrote the entry; empty if unowned.
	Owner InstanceID
}

// node is an intrusive doubly linked list element owned by the store.
type node[K comparable, D, R any] struct {
	key K

	data         D
	rendered     R
	lastAccessed time.Time
	renderCount  uint64
	owner        InstanceID

	// head is MRU, tail is LRU.
	prev *node[K, D, R]
	next *node[K, D, R]
}

// Key returns the node key (part of policy.Node interface).
func (n *node[K, D, R]) Key() K { return n.key }

func (n *node[K, D, R]) entry() Entry[D, R] {
	return Entry[D, R]{
		Data:         n.data,
		Rendered:     n.rendered,
		LastAccessed: n.lastAccessed,
		RenderCount:  n.renderCount,
		Owner:        n.owner,
	}
}
