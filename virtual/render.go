package virtual

import (
	"context"

	"github.com/IvanBrykalov/rendercache/cache"
	"github.com/IvanBrykalov/rendercache/internal/singleflight"
)

// getOrRender returns the cached rendered content for id, rendering and
// storing it on miss. Concurrent misses for the same id share one render.
// A render error is returned to every waiter and nothing is cached.
//
// The shared render gets the first caller's values but not its
// cancellation; each caller still returns as soon as its own ctx is done.
func getOrRender[K comparable, D, R any](
	ctx context.Context,
	c cache.Cache[K, D, R],
	sf *singleflight.Group[K, R],
	id K,
	data D,
	owner cache.InstanceID,
	render func(context.Context) (R, error),
) (R, error) {
	// fast path
	if e, ok := c.Get(id); ok {
		return e.Rendered, nil
	}

	renderCtx := context.WithoutCancel(ctx)
	return sf.Do(ctx, id, func() (R, error) {
		// double-check after joining the flight; Peek keeps the counters honest
		if e, ok := c.Peek(id); ok {
			return e.Rendered, nil
		}
		r, err := render(renderCtx)
		if err != nil {
			return r, err
		}
		c.SetOwned(id, data, r, owner)
		return r, nil
	})
}
