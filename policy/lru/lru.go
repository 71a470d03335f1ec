// Package lru implements the LRU ordering policy.
package lru

import "github.com/IvanBrykalov/rendercache/policy"

// lru is a classic "move-to-front" Least-Recently-Used policy.
// With it the list tail is always the entry with the oldest access time.
type lru[K comparable] struct {
	h policy.Hooks[K]
}

type lruPolicy[K comparable] struct{}

// New returns a Policy factory that constructs LRU instances.
func New[K comparable]() policy.Policy[K] { return lruPolicy[K]{} }

// New implements policy.Policy by binding store hooks.
func (lruPolicy[K]) New(h policy.Hooks[K]) policy.StorePolicy[K] {
	return &lru[K]{h: h}
}

// OnAdd places the new entry at MRU. Capacity is enforced by the store.
func (p *lru[K]) OnAdd(n policy.Node[K]) { p.h.PushFront(n) }

// OnGet promotes the entry to MRU.
func (p *lru[K]) OnGet(n policy.Node[K]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry to MRU (a refresh counts as recent use).
func (p *lru[K]) OnUpdate(n policy.Node[K]) { p.h.MoveToFront(n) }

// OnRemove is a no-op for pure LRU.
func (p *lru[K]) OnRemove(_ policy.Node[K]) {}
