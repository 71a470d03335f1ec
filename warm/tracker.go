package warm

// Tracker derives a scroll Direction from consecutive scroll offsets.
// The zero value is ready to use. Not safe for concurrent use; one Tracker
// belongs to one list.
type Tracker struct {
	last float64
	seen bool
	dir  Direction
}

// Observe records a new offset and returns the current direction and whether
// it differs from the previous one. The first observation is Idle.
// An unchanged offset keeps the previous direction.
func (t *Tracker) Observe(offset float64) (Direction, bool) {
	if !t.seen {
		t.seen = true
		t.last = offset
		return t.dir, false
	}

	next := t.dir
	switch {
	case offset > t.last:
		next = Down
	case offset < t.last:
		next = Up
	}
	t.last = offset

	changed := next != t.dir
	t.dir = next
	return next, changed
}

// Direction returns the last observed direction.
func (t *Tracker) Direction() Direction { return t.dir }
