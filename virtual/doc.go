// Package virtual is the entry point list views use to cache rendered rows.
//
// Two shapes share the same store:
//
//   - Private: one cache per list. The list owns it and must Close it when
//     it goes away, which stops the periodic sweep.
//
//   - Shared: one cache for the whole process, multiplexed across lists.
//     Each list calls Attach to get a Handle with a fresh instance id and
//     calls Handle.Detach when it goes away; Detach releases every entry
//     that list wrote without touching the others. Construct one Shared at
//     startup and pass it to the lists that need it; its sweep runs for the
//     life of the process (Close exists for tests and orderly shutdown).
//
// A typical render loop:
//
//	h := shared.Attach()
//	defer h.Detach()
//
//	for i := vr.Start; i <= vr.End; i++ {
//	    html, _ := h.GetOrRender(ctx, tasks[i].ID, tasks[i], func(context.Context) (string, error) {
//	        return renderRow(tasks[i], i), nil
//	    })
//	    ...
//	}
//	if dir, changed := tracker.Observe(offset); changed {
//	    h.Warm(tasks, vr, dir, renderRow)
//	}
package virtual
