package cache

import (
	"sync"
	"time"
)

// now is a small indirection to allow test stubbing.
var now = time.Now

// Snapshot memoizes a single computed value for a fixed TTL. It is used to
// keep cheap, slightly stale copies of aggregate projections such as the
// dashboard. A ttl <= 0 disables caching entirely.
type Snapshot[V any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	value     V
	expiresAt time.Time
}

// NewSnapshot constructs an empty snapshot with the given TTL.
func NewSnapshot[V any](ttl time.Duration) *Snapshot[V] {
	return &Snapshot[V]{ttl: ttl}
}

// Get returns the cached value and whether it is still fresh.
func (s *Snapshot[V]) Get() (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	if s.expiresAt.IsZero() || !now().Before(s.expiresAt) {
		return zero, false
	}
	return s.value, true
}

// Set stores a freshly computed value. With a non-positive TTL the value is
// dropped immediately.
func (s *Snapshot[V]) Set(value V) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.expiresAt = now().Add(s.ttl)
}

// Invalidate discards the cached value.
func (s *Snapshot[V]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	s.value = zero
	s.expiresAt = time.Time{}
}
