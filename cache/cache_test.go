package cache

import (
	"math"
	"strconv"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock           { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }
func (f *fakeClock) Now() time.Time      { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(maxSize int, ttl time.Duration, clk Clock) Cache[string, int, string] {
	return New[string, int, string](Options[string, int, string]{MaxSize: maxSize, TTL: ttl, Clock: clk})
}

// maxSize=3: the fourth insert evicts the first one.
func TestCache_CapacityScenario(t *testing.T) {
	t.Parallel()

	c := newTestCache(3, time.Second, newFakeClock())
	t.Cleanup(func() { _ = c.Close() })

	c.Set("1", 1, "one")
	c.Set("2", 2, "two")
	c.Set("3", 3, "three")
	if st := c.Stats(); st.Size != 3 || st.Metrics.Evictions != 0 {
		t.Fatalf("after 3 sets: size=%d evictions=%d", st.Size, st.Metrics.Evictions)
	}

	c.Set("4", 4, "four")
	st := c.Stats()
	if st.Size != 3 || st.Metrics.Evictions != 1 {
		t.Fatalf("after 4th set: size=%d evictions=%d", st.Size, st.Metrics.Evictions)
	}
	if c.Has("1") {
		t.Fatal("1 must be evicted")
	}
	for _, k := range []string{"2", "3", "4"} {
		if !c.Has(k) {
			t.Fatalf("%s must be present", k)
		}
	}
	if st.UtilizationRate != 100 {
		t.Fatalf("utilization want 100, got %v", st.UtilizationRate)
	}
}

// Size never exceeds MaxSize across a long insert sequence.
func TestCache_BoundedSize(t *testing.T) {
	t.Parallel()

	const maxSize = 7
	c := newTestCache(maxSize, time.Minute, newFakeClock())
	for i := 0; i < 100; i++ {
		c.Set(strconv.Itoa(i%23), i, "r")
		if n := c.Len(); n > maxSize {
			t.Fatalf("size %d exceeds max %d after set #%d", n, maxSize, i)
		}
	}
}

// N+1 distinct inserts with no reads evict the first inserted id.
func TestCache_EvictionLRU(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	c := newTestCache(4, time.Minute, clk)
	for i := 0; i < 5; i++ {
		c.Set(strconv.Itoa(i), i, "r")
		clk.add(time.Millisecond)
	}
	if c.Has("0") {
		t.Fatal("first inserted id must be evicted")
	}
	if c.Len() != 4 {
		t.Fatalf("len want 4, got %d", c.Len())
	}
}

// A Get promotes the entry so the next eviction takes another one.
func TestCache_GetRefreshesRecency(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	c := newTestCache(3, time.Minute, clk)
	c.Set("a", 1, "A")
	c.Set("b", 2, "B")
	c.Set("c", 3, "C")

	clk.add(time.Millisecond)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expect hit for a")
	}
	c.Set("d", 4, "D")

	if !c.Has("a") {
		t.Fatal("a must survive (promoted)")
	}
	if c.Has("b") {
		t.Fatal("b must be evicted")
	}
}

// Entries older than TTL disappear on the next Set even if never read again.
func TestCache_TTL_SweepOnSet(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	c := newTestCache(10, 100*time.Millisecond, clk)

	c.Set("a", 1, "A")
	clk.add(150 * time.Millisecond)
	c.Set("b", 2, "B")

	if c.Has("a") {
		t.Fatal("a must be swept")
	}
	if !c.Has("b") {
		t.Fatal("b must be present")
	}
	if ev := c.Metrics().Evictions; ev != 1 {
		t.Fatalf("ttl removal must count as eviction, got %d", ev)
	}
}

func TestCache_Sweep(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	c := newTestCache(10, 100*time.Millisecond, clk)

	c.Set("old1", 1, "")
	c.Set("old2", 2, "")
	clk.add(80 * time.Millisecond)
	c.Set("young", 3, "")
	clk.add(50 * time.Millisecond)

	if n := c.Sweep(); n != 2 {
		t.Fatalf("sweep must remove 2 entries, removed %d", n)
	}
	if !c.Has("young") || c.Len() != 1 {
		t.Fatalf("only young must remain, len=%d", c.Len())
	}
	// Age exactly equal to TTL is not stale.
	clk.add(50 * time.Millisecond)
	if n := c.Sweep(); n != 0 {
		t.Fatalf("age == ttl must not be swept, removed %d", n)
	}
}

// A stale entry found by Get is evicted and reported as a miss.
func TestCache_GetExpired(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	var reasons []EvictReason
	c := New[string, int, string](Options[string, int, string]{
		MaxSize: 4,
		TTL:     100 * time.Millisecond,
		Clock:   clk,
		OnEvict: func(_ string, _ Entry[int, string], r EvictReason) { reasons = append(reasons, r) },
	})

	c.Set("x", 1, "X")
	clk.add(200 * time.Millisecond)
	if _, ok := c.Get("x"); ok {
		t.Fatal("expired hit")
	}
	m := c.Metrics()
	if m.Misses != 1 || m.Hits != 0 || m.Evictions != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if len(reasons) != 1 || reasons[0] != EvictTTL {
		t.Fatalf("OnEvict reasons want [ttl], got %v", reasons)
	}
}

func TestCache_HitRate(t *testing.T) {
	t.Parallel()

	c := newTestCache(10, time.Minute, newFakeClock())
	c.Set("a", 1, "A")

	const hits, misses = 7, 3
	for i := 0; i < hits; i++ {
		c.Get("a")
	}
	for i := 0; i < misses; i++ {
		c.Get("missing-" + strconv.Itoa(i))
	}

	m := c.Metrics()
	if m.Hits != hits || m.Misses != misses || m.TotalRequests != hits+misses {
		t.Fatalf("unexpected counters %+v", m)
	}
	want := float64(hits) / float64(hits+misses) * 100
	if math.Abs(m.HitRate-want) > 1e-9 {
		t.Fatalf("hit rate want %v, got %v", want, m.HitRate)
	}
	if e, _ := c.Peek("a"); e.RenderCount != hits {
		t.Fatalf("render count want %d, got %d", hits, e.RenderCount)
	}
}

func TestCache_HitRateEmpty(t *testing.T) {
	t.Parallel()

	c := newTestCache(10, time.Minute, nil)
	if m := c.Metrics(); m.HitRate != 0 || m.TotalRequests != 0 {
		t.Fatalf("fresh cache must report zero metrics, got %+v", m)
	}
}

// Has, Peek and Remove are pure map operations.
func TestCache_HasRemoveNoMetrics(t *testing.T) {
	t.Parallel()

	c := newTestCache(10, time.Minute, newFakeClock())
	c.Set("a", 1, "A")

	if !c.Has("a") || c.Has("b") {
		t.Fatal("Has mismatch")
	}
	if _, ok := c.Peek("a"); !ok {
		t.Fatal("Peek a must be present")
	}
	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if c.Remove("a") {
		t.Fatal("second Remove must be false")
	}
	if m := c.Metrics(); m != (MetricsSnapshot{}) {
		t.Fatalf("pure operations must not touch metrics, got %+v", m)
	}
}

// Overwriting an id refreshes the entry and is not an eviction.
func TestCache_Overwrite(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	c := newTestCache(2, time.Minute, clk)
	c.Set("a", 1, "A1")
	c.Get("a")
	clk.add(time.Second)
	c.Set("a", 2, "A2")

	e, ok := c.Peek("a")
	if !ok || e.Data != 2 || e.Rendered != "A2" {
		t.Fatalf("overwrite not applied: %+v", e)
	}
	if e.RenderCount != 0 || !e.LastAccessed.Equal(clk.Now()) {
		t.Fatalf("overwrite must reset access metadata: %+v", e)
	}
	if c.Len() != 1 || c.Metrics().Evictions != 0 {
		t.Fatalf("overwrite must not evict: len=%d evictions=%d", c.Len(), c.Metrics().Evictions)
	}
}

func TestCache_ClearResetsMetrics(t *testing.T) {
	t.Parallel()

	c := newTestCache(2, time.Minute, newFakeClock())
	c.Register("list-a")
	c.SetOwned("a", 1, "A", "list-a")
	c.Set("b", 2, "B")
	c.Set("c", 3, "C")
	c.Get("c")
	c.Get("zzz")

	c.Clear()

	st := c.Stats()
	if st.Size != 0 {
		t.Fatalf("size after Clear want 0, got %d", st.Size)
	}
	if st.Metrics.Hits != 0 || st.Metrics.Misses != 0 || st.Metrics.Evictions != 0 {
		t.Fatalf("counters must be reset, got %+v", st.Metrics)
	}
	if st.Metrics.InstanceCount != 1 {
		t.Fatalf("Clear must keep registered instances, got %d", st.Metrics.InstanceCount)
	}
	c.Set("d", 4, "D")
	if !c.Has("d") {
		t.Fatal("cache must be usable after Clear")
	}
}

// Unregistering one instance releases exactly its entries.
func TestCache_InstanceIsolation(t *testing.T) {
	t.Parallel()

	c := newTestCache(20, time.Minute, newFakeClock())
	a, b := NewInstanceID(), NewInstanceID()
	c.Register(a)
	c.Register(b)
	c.Register(a) // idempotent
	if n := c.Instances(); n != 2 {
		t.Fatalf("instances want 2, got %d", n)
	}

	for i := 0; i < 5; i++ {
		c.SetOwned("a"+strconv.Itoa(i), i, "", a)
		c.SetOwned("b"+strconv.Itoa(i), i, "", b)
	}

	if released := c.Unregister(a); released != 5 {
		t.Fatalf("released want 5, got %d", released)
	}
	for i := 0; i < 5; i++ {
		if c.Has("a" + strconv.Itoa(i)) {
			t.Fatalf("a%d must be released", i)
		}
		if !c.Has("b" + strconv.Itoa(i)) {
			t.Fatalf("b%d must survive", i)
		}
	}
	m := c.Metrics()
	if m.InstanceCount != 1 {
		t.Fatalf("instance count want 1, got %d", m.InstanceCount)
	}
	if m.Evictions != 0 {
		t.Fatalf("release is not eviction, got %d", m.Evictions)
	}
}

func TestCache_UnregisterUnknown(t *testing.T) {
	t.Parallel()

	c := newTestCache(4, time.Minute, newFakeClock())
	c.Set("a", 1, "A")
	if n := c.Unregister("never-registered"); n != 0 {
		t.Fatalf("unknown instance must release nothing, got %d", n)
	}
	if !c.Has("a") {
		t.Fatal("unowned entry must survive")
	}
}

// Writes on behalf of an unregistered owner are dropped so no entry can
// outlive its owner's registration.
func TestCache_SetOwnedRequiresRegistration(t *testing.T) {
	t.Parallel()

	c := newTestCache(4, time.Minute, newFakeClock())
	c.SetOwned("a", 1, "A", "ghost")
	if c.Has("a") {
		t.Fatal("write for unregistered owner must be dropped")
	}

	c.Register("ghost")
	c.SetOwned("a", 1, "A", "ghost")
	c.Unregister("ghost")
	c.SetOwned("b", 2, "B", "ghost")
	if c.Len() != 0 {
		t.Fatalf("len want 0, got %d", c.Len())
	}
}

// The last writer owns a shared entry.
func TestCache_OwnershipTransfer(t *testing.T) {
	t.Parallel()

	c := newTestCache(4, time.Minute, newFakeClock())
	c.Register("a")
	c.Register("b")
	c.SetOwned("k", 1, "", "a")
	c.SetOwned("k", 1, "", "b")

	c.Unregister("a")
	if !c.Has("k") {
		t.Fatal("entry now owned by b must survive a's release")
	}
	c.Unregister("b")
	if c.Has("k") {
		t.Fatal("entry must go with its owner")
	}
}

// Negative MaxSize is degenerate but must not panic.
func TestCache_DegenerateMaxSize(t *testing.T) {
	t.Parallel()

	c := newTestCache(-1, time.Minute, newFakeClock())
	for i := 0; i < 5; i++ {
		c.Set(strconv.Itoa(i), i, "")
	}
	if c.Len() != 1 || !c.Has("4") {
		t.Fatalf("degenerate store keeps only the last insert, len=%d", c.Len())
	}
	if st := c.Stats(); st.UtilizationRate != 0 {
		t.Fatalf("utilization must be 0 for non-positive max, got %v", st.UtilizationRate)
	}
}

func TestCache_DisableMetrics(t *testing.T) {
	t.Parallel()

	c := New[string, int, string](Options[string, int, string]{MaxSize: 1, DisableMetrics: true})
	c.Set("a", 1, "")
	c.Get("a")
	c.Get("b")
	c.Set("c", 3, "")
	if m := c.Metrics(); m != (MetricsSnapshot{}) {
		t.Fatalf("metrics must stay zero when disabled, got %+v", m)
	}
}

func TestCache_Defaults(t *testing.T) {
	t.Parallel()

	c := New[string, int, string](Options[string, int, string]{})
	if st := c.Stats(); st.MaxSize != DefaultMaxSize {
		t.Fatalf("default max size want %d, got %d", DefaultMaxSize, st.MaxSize)
	}
}

func TestCache_Closed(t *testing.T) {
	t.Parallel()

	c := newTestCache(4, time.Minute, nil)
	c.Set("a", 1, "A")
	_ = c.Close()

	c.Set("b", 2, "B")
	if c.Has("b") {
		t.Fatal("Set after Close must be ignored")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get after Close must miss")
	}
}

func TestSweepInterval(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{ttl: 100 * time.Millisecond, want: 50 * time.Millisecond},
		{ttl: 5 * time.Minute, want: MaxSweepInterval},
		{ttl: 0, want: 0},
	}
	for _, tc := range cases {
		if got := SweepInterval(tc.ttl); got != tc.want {
			t.Errorf("SweepInterval(%v) want %v, got %v", tc.ttl, tc.want, got)
		}
	}
}
