package report

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore keeps the most recent runs in memory and delegates to a
// backing Store on miss.
type LRUStore struct {
	cache *lru.Cache[string, *RunResult]
	back  Store
}

// NewLRUStore creates an LRU cache with the given capacity that delegates
// to back on cache misses. Capacities below 1 are raised to 1.
func NewLRUStore(capacity int, back Store) *LRUStore {
	if capacity < 1 {
		capacity = 1
	}
	// New only fails for non-positive sizes.
	cache, _ := lru.New[string, *RunResult](capacity)
	return &LRUStore{cache: cache, back: back}
}

// Save writes the result to the cache and to the backing store.
func (s *LRUStore) Save(result *RunResult) error {
	s.cache.Add(result.ID, result)
	return s.back.Save(result)
}

// Load checks the cache first. On miss, it loads from the backing store
// and promotes the result into the cache.
func (s *LRUStore) Load(runID string) (*RunResult, error) {
	if r, ok := s.cache.Get(runID); ok {
		return r, nil
	}
	result, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(runID, result)
	return result, nil
}

// Len returns the number of cached runs.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
