// Package warm pre-renders list items just outside the visible range, in the
// direction the list is scrolling, so they are cached before they appear.
package warm

import (
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/rendercache/cache"
)

// MaxWindow caps how many items a single Warm call may render.
const MaxWindow = 10

// Direction is the scroll direction reported by the list controller.
type Direction int

const (
	Idle Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "idle"
	}
}

// Range is the inclusive index range currently visible.
type Range struct {
	Start int
	End   int
}

// Target is the part of a cache the warmer writes to.
type Target[K comparable, D, R any] interface {
	Has(k K) bool
	SetOwned(k K, data D, rendered R, owner cache.InstanceID)
}

// RenderFunc produces the rendered content for the item at index.
// It may be called for items the user never scrolls to and must be free of
// side effects.
type RenderFunc[D, R any] func(item D, index int) R

// Options configures a Warmer.
type Options struct {
	// Concurrency is the number of items rendered in parallel per Warm call.
	// Values below 2 render sequentially on the calling goroutine.
	Concurrency int
}

// Warmer fills a Target ahead of the scroll position.
type Warmer[K comparable, D, R any] struct {
	t     Target[K, D, R]
	keyOf func(D) K
	opt   Options
}

// New returns a Warmer writing into t. keyOf extracts the item id.
func New[K comparable, D, R any](t Target[K, D, R], keyOf func(D) K, opt Options) *Warmer[K, D, R] {
	return &Warmer[K, D, R]{t: t, keyOf: keyOf, opt: opt}
}

// Window returns the inclusive index window to warm for a list of n items.
// ok is false when there is nothing to warm: idle direction, empty list,
// inverted or negative range, or a window that falls outside the list.
//
// The window size is min(MaxWindow, ceil((End-Start)/2)).
func Window(n int, vr Range, dir Direction) (lo, hi int, ok bool) {
	if n <= 0 || vr.Start < 0 || vr.End < vr.Start {
		return 0, 0, false
	}
	size := min(MaxWindow, (vr.End-vr.Start+1)/2)
	if size <= 0 {
		return 0, 0, false
	}

	switch dir {
	case Down:
		lo = vr.End + 1
		hi = min(vr.End+size, n-1)
	case Up:
		lo = max(vr.Start-size, 0)
		hi = min(max(vr.Start-1, 0), n-1)
	default:
		return 0, 0, false
	}
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// Warm renders and stores every item in the window that is not cached yet
// and returns how many were stored. Cached ids are skipped without touching
// recency or metrics. Calling Warm again with the same arguments is a no-op.
//
// Rendering may run in parallel (Options.Concurrency), but entries are
// inserted in index order and Warm returns only after all of them are stored.
func (w *Warmer[K, D, R]) Warm(items []D, vr Range, dir Direction, render RenderFunc[D, R], owner cache.InstanceID) int {
	lo, hi, ok := Window(len(items), vr, dir)
	if !ok || render == nil {
		return 0
	}

	todo := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if !w.t.Has(w.keyOf(items[i])) {
			todo = append(todo, i)
		}
	}
	if len(todo) == 0 {
		return 0
	}

	if w.opt.Concurrency < 2 || len(todo) == 1 {
		for _, i := range todo {
			w.t.SetOwned(w.keyOf(items[i]), items[i], render(items[i], i), owner)
		}
		return len(todo)
	}

	out := make([]R, len(todo))
	var g errgroup.Group
	g.SetLimit(w.opt.Concurrency)
	for j, i := range todo {
		j, i := j, i
		g.Go(func() error {
			out[j] = render(items[i], i)
			return nil
		})
	}
	_ = g.Wait() // render never fails

	for j, i := range todo {
		w.t.SetOwned(w.keyOf(items[i]), items[i], out[j], owner)
	}
	return len(todo)
}
