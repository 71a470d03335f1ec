package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/rendercache/cache"
	"github.com/IvanBrykalov/rendercache/virtual"
	"github.com/IvanBrykalov/rendercache/warm"
)

// row is a synthetic list item (a task on a board, a member in a list).
type row struct {
	ID    string
	Title string
}

func rowID(r row) string { return r.ID }

func renderRow(r row, index int) string {
	return "<li data-index=\"" + strconv.Itoa(index) + "\">" + r.Title + "</li>"
}

// workload describes the simulated lists.
type workload struct {
	lists    int   // concurrent lists attached to the shared cache
	datasets int   // lists over the same dataset share entries
	items    int   // rows per dataset
	window   int   // visible rows per list
	flipPct  int   // chance per step to reverse scroll direction
	seed     int64 // RNG seed base
}

// tally counts what the lists did.
type tally struct {
	steps   atomic.Uint64
	renders atomic.Uint64
	warmed  atomic.Uint64
}

func newShared(opt virtual.Options[string, row, string]) *virtual.Shared[string, row, string] {
	opt.KeyOf = rowID
	return virtual.NewShared(opt)
}

func datasets(wl workload) [][]row {
	out := make([][]row, max(wl.datasets, 1))
	for d := range out {
		rows := make([]row, wl.items)
		for i := range rows {
			rows[i] = row{
				ID:    "ds" + strconv.Itoa(d) + ":" + strconv.Itoa(i),
				Title: fmt.Sprintf("Item %d of dataset %d", i, d),
			}
		}
		out[d] = rows
	}
	return out
}

// run scrolls every list until ctx is done, then detaches them.
func run(ctx context.Context, shared *virtual.Shared[string, row, string], wl workload, t *tally, log *slog.Logger) error {
	data := datasets(wl)
	g, ctx := errgroup.WithContext(ctx)
	for l := 0; l < wl.lists; l++ {
		id := l
		g.Go(func() error {
			h := shared.Attach()
			defer h.Detach()
			log.Debug("list started", "list", id, "instance", h.ID())
			return scroll(ctx, h, data[id%len(data)], wl, rand.New(rand.NewSource(wl.seed+int64(id)*9973)), t)
		})
	}
	return g.Wait()
}

// runPrivate is run with one private cache per list. It returns the
// combined stats of every list's cache taken when the list stopped.
func runPrivate(ctx context.Context, opt virtual.Options[string, row, string], wl workload, t *tally, log *slog.Logger) (cache.Stats, error) {
	data := datasets(wl)
	opt.KeyOf = rowID
	opt.Logger = log
	stats := make([]cache.Stats, wl.lists)

	g, ctx := errgroup.WithContext(ctx)
	for l := 0; l < wl.lists; l++ {
		id := l
		g.Go(func() error {
			p := virtual.NewPrivate(opt)
			defer func() { _ = p.Close() }()
			err := scroll(ctx, p, data[id%len(data)], wl, rand.New(rand.NewSource(wl.seed+int64(id)*9973)), t)
			stats[id] = p.Stats()
			return err
		})
	}
	err := g.Wait()
	return combine(stats), err
}

// combine sums per-list stats; rates are recomputed from the sums.
func combine(all []cache.Stats) cache.Stats {
	var st cache.Stats
	for _, s := range all {
		st.Size += s.Size
		st.MaxSize += s.MaxSize
		st.Metrics.Hits += s.Metrics.Hits
		st.Metrics.Misses += s.Metrics.Misses
		st.Metrics.Evictions += s.Metrics.Evictions
		st.Metrics.InstanceCount += s.Metrics.InstanceCount
	}
	st.Metrics.TotalRequests = st.Metrics.Hits + st.Metrics.Misses
	if st.Metrics.TotalRequests > 0 {
		st.Metrics.HitRate = float64(st.Metrics.Hits) / float64(st.Metrics.TotalRequests) * 100
	}
	if st.MaxSize > 0 {
		st.UtilizationRate = float64(st.Size) / float64(st.MaxSize) * 100
	}
	return st
}

// lister is the part of a cache facade a scrolling list uses.
type lister interface {
	GetOrRender(ctx context.Context, id string, data row, render func(context.Context) (string, error)) (string, error)
	Warm(items []row, vr warm.Range, dir warm.Direction, render warm.RenderFunc[row, string]) int
}

// scroll moves one list's viewport around, reading visible rows through the
// cache and warming ahead whenever the direction changes.
func scroll(ctx context.Context, h lister, items []row, wl workload, r *rand.Rand, t *tally) error {
	if len(items) == 0 || wl.window <= 0 {
		return nil
	}
	var tracker warm.Tracker
	offset, step := 0, 1
	last := max(len(items)-wl.window, 0)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if r.Intn(100) < wl.flipPct {
			step = -step
		}
		offset = min(max(offset+step*(1+r.Intn(3)), 0), last)
		if offset == 0 || offset == last {
			step = -step
		}

		vr := warm.Range{Start: offset, End: min(offset+wl.window-1, len(items)-1)}
		for i := vr.Start; i <= vr.End; i++ {
			it, idx := items[i], i
			_, err := h.GetOrRender(ctx, it.ID, it, func(context.Context) (string, error) {
				t.renders.Add(1)
				return renderRow(it, idx), nil
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}

		if dir, changed := tracker.Observe(float64(offset)); changed {
			t.warmed.Add(uint64(h.Warm(items, vr, dir, renderRow)))
		}
		t.steps.Add(1)
	}
}

// summary is the printable result of a run.
type summary struct {
	Steps   uint64      `json:"steps"`
	Renders uint64      `json:"renders"`
	Warmed  uint64      `json:"warmed"`
	Stats   cache.Stats `json:"stats"`
}

func summarize(t *tally, st cache.Stats) summary {
	return summary{
		Steps:   t.steps.Load(),
		Renders: t.renders.Load(),
		Warmed:  t.warmed.Load(),
		Stats:   st,
	}
}
