package cache

import "github.com/google/uuid"

// InstanceID identifies one consumer attached to a shared cache.
type InstanceID string

// NewInstanceID mints a random id for one consumer attachment.
func NewInstanceID() InstanceID { return InstanceID(uuid.NewString()) }

func (s *store[K, D, R]) Register(id InstanceID) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active[id] = struct{}{}
	s.opt.Metrics.Instances(len(s.active))
}

func (s *store[K, D, R]) Unregister(id InstanceID) int {
	if id == "" {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, id)

	released := 0
	for n := s.tail; n != nil; {
		prev := n.prev
		if n.owner == id {
			s.dropNode(n)
			released++
		}
		n = prev
	}
	s.opt.Metrics.Instances(len(s.active))
	if released > 0 {
		s.opt.Metrics.Size(s.len)
	}
	return released
}

func (s *store[K, D, R]) Instances() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
