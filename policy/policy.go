// Package policy defines how a store orders its resident entries.
//
// The store keeps an intrusive MRU↔LRU list and always evicts from the back
// of that list. A policy only decides where nodes land on admission, access
// and update, so swapping policies never changes the store's locking or its
// map bookkeeping.
package policy

// Node is the minimal contract a cache entry must satisfy for a policy.
type Node[K comparable] interface {
	Key() K
}

// Hooks expose O(1) list operations that a policy can use to manipulate
// the store's intrusive MRU/LRU list. Implementations are provided by the store.
//
// Concurrency: all hook calls happen under the store lock.
// Important: hooks manage only the list; the store owns the key->node map.
type Hooks[K comparable] interface {
	// MoveToFront promotes the node to MRU.
	MoveToFront(Node[K])
	// PushFront inserts the node at MRU (used on admission).
	PushFront(Node[K])
	// Remove detaches the node from the list (map bookkeeping is done by the store).
	Remove(Node[K])
	// Back returns the current LRU node (or nil if empty).
	Back() Node[K]
	// Len returns the number of resident nodes.
	Len() int
}

// StorePolicy is a policy instance bound to one store's hooks.
// All methods are invoked under the store lock.
//
//   - OnAdd must link the node into the list.
//   - OnGet/OnUpdate typically promote the node (e.g., move to MRU).
//   - OnRemove is a notification; the store performs the actual unlink.
type StorePolicy[K comparable] interface {
	OnAdd(Node[K])
	OnGet(Node[K])
	OnUpdate(Node[K])
	OnRemove(Node[K])
}

// Policy is a factory that creates store-local policy instances.
// A store calls New again after Clear, so instances may keep private state.
type Policy[K comparable] interface {
	New(Hooks[K]) StorePolicy[K]
}
