// Package singleflight coalesces concurrent renders of the same key.
package singleflight

import (
	"context"
	"sync"
)

// Group runs fn at most once per key K among concurrent callers.
// Keys are compared with ==, never through their printed form.
//
// fn runs on its own goroutine, so no caller's ctx can abort it: every
// caller, the first included, stops waiting when its own ctx is done while
// the shared call keeps running for the others.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed once val/err are published
	val  V
	err  error
}

// Do returns the result of fn for key, joining an in-flight call if one
// exists. It returns ctx.Err() if ctx is done first.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	c, ok := g.m[key]
	if !ok {
		c = &call[V]{done: make(chan struct{})}
		g.m[key] = c
		go g.run(key, c, fn)
	}
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()

	close(c.done)
}

// InFlight reports whether a call for key is running.
func (g *Group[K, V]) InFlight(key K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.m[key]
	return ok
}
