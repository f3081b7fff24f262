package config

import (
	"sync"
	"sync/atomic"
)

// Store holds the current configuration value. Reads are lock-free; swaps
// notify every registered listener in registration order.
type Store[T any] struct {
	value atomic.Pointer[T]

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(old, cur *T)
	order     []int
}

// NewStore creates a config store with the given initial value.
func NewStore[T any](initial *T) *Store[T] {
	s := &Store[T]{listeners: make(map[int]func(old, cur *T))}
	s.value.Store(initial)
	return s
}

// Get returns the current config value.
func (s *Store[T]) Get() *T {
	return s.value.Load()
}

// Swap replaces the config and returns the previous value. Listeners run on
// the calling goroutine; swapping in the pointer already held is a no-op.
func (s *Store[T]) Swap(cur *T) *T {
	old := s.value.Swap(cur)
	if old == cur {
		return old
	}

	s.mu.Lock()
	fns := make([]func(old, cur *T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(old, cur)
	}
	return old
}

// OnChange registers fn and returns a function that unregisters it.
func (s *Store[T]) OnChange(fn func(old, cur *T)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}
