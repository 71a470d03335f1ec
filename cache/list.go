package cache

import "github.com/IvanBrykalov/rendercache/policy"

// insertFront inserts n at MRU in O(1).
func (s *store[K, D, R]) insertFront(n *node[K, D, R]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
}

// moveToFront promotes n to MRU in O(1).
func (s *store[K, D, R]) moveToFront(n *node[K, D, R]) {
	if n == s.head {
		return
	}
	// detach
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	// insert at head
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// removeNode unlinks n and updates the length in O(1).
func (s *store[K, D, R]) removeNode(n *node[K, D, R]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
}

// back returns the current LRU node in O(1).
func (s *store[K, D, R]) back() *node[K, D, R] { return s.tail }

// -------------------- policy hooks --------------------

// storeHooks adapts the store's list operations to policy.Hooks.
type storeHooks[K comparable, D, R any] struct{ s *store[K, D, R] }

func (h storeHooks[K, D, R]) MoveToFront(x policy.Node[K]) { h.s.moveToFront(x.(*node[K, D, R])) }
func (h storeHooks[K, D, R]) PushFront(x policy.Node[K])   { h.s.insertFront(x.(*node[K, D, R])) }
func (h storeHooks[K, D, R]) Remove(x policy.Node[K])      { h.s.removeNode(x.(*node[K, D, R])) }
func (h storeHooks[K, D, R]) Len() int                     { return h.s.len }

// Back returns the LRU node; a nil tail must become a nil interface.
func (h storeHooks[K, D, R]) Back() policy.Node[K] {
	if t := h.s.back(); t != nil {
		return t
	}
	return nil
}
