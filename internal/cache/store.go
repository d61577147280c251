package cache

import (
	"context"
	"sync"
)

// Stats is a snapshot of store usage.
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

// Store keeps one successful value per key for the lifetime of its owner.
// Values are written once; later writes for the same key keep the first value.
type Store[V any] struct {
	mu         sync.Mutex
	items      map[string]V
	maxEntries int
	hits       int
	misses     int
}

// NewStore creates a store; maxEntries <= 0 means no cap.
// A full store keeps serving existing keys and stops retaining new ones.
func NewStore[V any](maxEntries int) *Store[V] {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Store[V]{
		items:      make(map[string]V),
		maxEntries: maxEntries,
	}
}

// Get returns the stored value for key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	return v, ok
}

// LoadOrStore inserts value if key is absent and returns whatever is stored afterwards.
// stored is false when the key was already present or the store is full.
func (s *Store[V]) LoadOrStore(key string, value V) (actual V, stored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[key]; ok {
		return existing, false
	}
	if s.maxEntries > 0 && len(s.items) >= s.maxEntries {
		return value, false
	}
	s.items[key] = value
	return value, true
}

// Do returns the value for key, running fn on a miss. Only successful results are kept,
// so a failed key is retried on the next call. Concurrent misses may each run fn.
func (s *Store[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err := fn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	actual, _ := s.LoadOrStore(key, v)
	return actual, nil
}

// Len returns the number of stored keys.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Stats returns hit/miss counters.
func (s *Store[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Hits: s.hits, Misses: s.misses, Entries: len(s.items)}
}
