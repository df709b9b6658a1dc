package cache

import "sync"

// Store is a generic thread-safe append-only cache.
//
// Store must not be copied after creation (has mutex).
type Store[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	limit   int
	hits    uint64
	misses  uint64
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

// New creates a store that retains at most limit entries.
// A limit of 0 means unlimited.
func New[K comparable, V any](limit int) *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]V),
		limit:   limit,
	}
}

// Get retrieves a value from the store.
// Returns (value, true) if found, (zero, false) otherwise.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key]
	return v, ok
}

// Add stores value under key unless the key is already present or the store
// is full. It reports whether the value was retained.
func (s *Store[K, V]) Add(key K, value V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addLocked(key, value)
}

func (s *Store[K, V]) addLocked(key K, value V) bool {
	if _, ok := s.entries[key]; ok {
		return false
	}
	if s.limit > 0 && len(s.entries) >= s.limit {
		return false
	}
	s.entries[key] = value
	return true
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Failed loads are not cached, so a later call retries.
//
// load is called under the store lock: concurrent callers for the same key
// never load twice.
func (s *Store[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.entries[key]; ok {
		s.hits++
		return v, nil
	}
	s.misses++

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	s.addLocked(key, v)
	return v, nil
}

// Len returns the number of cached entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns a snapshot of the store counters.
func (s *Store[K, V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Len: len(s.entries), Hits: s.hits, Misses: s.misses}
}
