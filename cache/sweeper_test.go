package cache

import (
	"sync/atomic"
	"testing"
	"time"
)

// With a real clock: ttl=100ms, wait 150ms, the scheduled sweep removes the entry.
func TestSweeper_RemovesExpired(t *testing.T) {
	t.Parallel()

	c := New[string, int, string](Options[string, int, string]{MaxSize: 8, TTL: 100 * time.Millisecond})
	var swept atomic.Int64
	sw := StartSweeper(c, SweepInterval(100*time.Millisecond), func(n int) { swept.Add(int64(n)) })
	t.Cleanup(sw.Stop)

	c.Set("a", 1, "A")
	time.Sleep(150 * time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for swept.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Has("a") {
		t.Fatal("a must be swept by the scheduled task")
	}
	if swept.Load() != 1 {
		t.Fatalf("onSweep must report 1 removal, got %d", swept.Load())
	}
	if ev := c.Metrics().Evictions; ev != 1 {
		t.Fatalf("scheduled sweep must count evictions, got %d", ev)
	}
}

func TestSweeper_StopIdempotent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	c := sweepFunc(func() int { calls.Add(1); return 0 })
	sw := StartSweeper(c, time.Millisecond, nil)
	time.Sleep(10 * time.Millisecond)
	sw.Stop()
	sw.Stop()

	after := calls.Load()
	time.Sleep(10 * time.Millisecond)
	if calls.Load() != after {
		t.Fatal("sweeps must not run after Stop")
	}
}

func TestSweeper_NonPositiveInterval(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	sw := StartSweeper(sweepFunc(func() int { calls.Add(1); return 0 }), 0, nil)
	time.Sleep(5 * time.Millisecond)
	sw.Stop()
	if calls.Load() != 0 {
		t.Fatal("no sweep may run for a non-positive interval")
	}
}

type sweepFunc func() int

func (f sweepFunc) Sweep() int { return f() }
