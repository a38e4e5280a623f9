package cache

import (
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// TTL Cache
//
// Memoizes adapter calls keyed by (symbol, data class) with one TTL per
// class. Failures are handed back to the caller and never stored, so the next
// access retries immediately instead of sticking for a TTL window.
// -----------------------------------------------------------------------------

// Class identifies how volatile a cached value is.
type Class string

const (
	ClassQuote    Class = "quote"
	ClassIntraday Class = "intraday"
	ClassDaily    Class = "daily"
)

// Key addresses one cached value.
type Key struct {
	Symbol string
	Class  Class
}

type entry struct {
	value     interface{}
	fetchedAt time.Time
}

// call tracks one in-flight fetch so concurrent misses for the same key
// coalesce to a single upstream invocation.
type call struct {
	wg    sync.WaitGroup
	value interface{}
	err   error
}

// Stats are cumulative counters exposed on the status endpoint.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Coalesced int64 `json:"coalesced"`
	Entries   int   `json:"entries"`
}

// Store is the TTL cache. The mutex only guards map bookkeeping; fetches run
// outside it, so distinct keys never serialize against each other.
type Store struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	inflight map[Key]*call
	ttls     map[Class]time.Duration
	stats    Stats

	now func() time.Time // swappable for tests
}

// -----------------------------------------------------------------------------

// NewStore builds a Store with one TTL per data class.
func NewStore(ttls map[Class]time.Duration) *Store {
	return &Store{
		entries:  make(map[Key]*entry),
		inflight: make(map[Key]*call),
		ttls:     ttls,
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// Get returns the cached value for key, invoking fetch on miss or expiry.
// Concurrent callers for the same key share a single fetch; a failed fetch is
// returned to every waiter and not cached.
func (s *Store) Get(key Key, fetch func() (interface{}, error)) (interface{}, error) {
	ttl := s.ttls[key.Class]

	s.mu.Lock()
	if e, ok := s.entries[key]; ok && s.now().Sub(e.fetchedAt) < ttl {
		s.stats.Hits++
		s.mu.Unlock()
		return e.value, nil
	}
	if c, ok := s.inflight[key]; ok {
		s.stats.Coalesced++
		s.mu.Unlock()
		c.wg.Wait()
		return c.value, c.err
	}

	c := &call{}
	c.wg.Add(1)
	s.inflight[key] = c
	s.stats.Misses++
	s.mu.Unlock()

	c.value, c.err = fetch()

	s.mu.Lock()
	delete(s.inflight, key)
	if c.err == nil {
		s.entries[key] = &entry{value: c.value, fetchedAt: s.now()}
	}
	s.mu.Unlock()

	c.wg.Done()
	return c.value, c.err
}

// -----------------------------------------------------------------------------

// InvalidateAll drops every entry regardless of class. In-flight fetches are
// left to complete; their results land with fresh timestamps.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	s.entries = make(map[Key]*entry)
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Snapshot returns current counters.
func (s *Store) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Entries = len(s.entries)
	return st
}

// -----------------------------------------------------------------------------

// GetTyped is a typed wrapper over Store.Get.
func GetTyped[T any](s *Store, key Key, fetch func() (T, error)) (T, error) {
	v, err := s.Get(key, func() (interface{}, error) { return fetch() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
