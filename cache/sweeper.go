package cache

import (
	"sync"
	"time"
)

// Sweeper runs Sweep on a fixed schedule until stopped.
type Sweeper struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartSweeper starts a goroutine calling c.Sweep every interval.
// onSweep, if non-nil, receives the number of entries removed by each tick.
// A non-positive interval returns a sweeper that never runs.
func StartSweeper(c interface{ Sweep() int }, interval time.Duration, onSweep func(removed int)) *Sweeper {
	sw := &Sweeper{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	if interval <= 0 {
		close(sw.done)
		return sw
	}

	go func() {
		defer close(sw.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-sw.stop:
				return
			case <-t.C:
				removed := c.Sweep()
				if onSweep != nil {
					onSweep(removed)
				}
			}
		}
	}()
	return sw
}

// Stop cancels the schedule and waits for an in-flight sweep to finish.
// Safe to call more than once.
func (sw *Sweeper) Stop() {
	sw.once.Do(func() { close(sw.stop) })
	<-sw.done
}
