// Package cache provides single-value, time-bounded cache slots. A slot
// is fresh while its age is under the TTL; expiry is checked lazily on
// read and never evicts, so a stale slot still serves the last good
// value until a refresh replaces it.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Wallfou/NBA-PICKS/internal/metrics"
)

// Slot holds one cached value with its creation time and TTL. Each slot
// additionally serializes refreshes: at most one refresh runs at a time,
// and waiters reuse the winner's result instead of hitting upstream again.
type Slot[T any] struct {
	name string
	ttl  time.Duration

	mu        sync.RWMutex
	value     T
	hasValue  bool
	createdAt time.Time

	refreshMu sync.Mutex
}

// NewSlot creates a named slot with the given TTL. The name is only used
// as a metrics label.
func NewSlot[T any](name string, ttl time.Duration) *Slot[T] {
	return &Slot[T]{name: name, ttl: ttl}
}

// Fresh returns the value if one is present and younger than the TTL.
func (s *Slot[T]) Fresh() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.hasValue && time.Since(s.createdAt) < s.ttl {
		metrics.CacheReadsTotal.WithLabelValues(s.name, "hit").Inc()
		return s.value, true
	}

	if s.hasValue {
		metrics.CacheReadsTotal.WithLabelValues(s.name, "stale").Inc()
	} else {
		metrics.CacheReadsTotal.WithLabelValues(s.name, "miss").Inc()
	}
	var zero T
	return zero, false
}

// Last returns the last good value regardless of staleness, with its
// creation time.
func (s *Slot[T]) Last() (T, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.createdAt, s.hasValue
}

// Set replaces the slot value and resets its age.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.hasValue = true
	s.createdAt = time.Now()
}

// Invalidate clears the slot entirely.
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.hasValue = false
	s.createdAt = time.Time{}
}

// Age returns the slot's age, false if it has never been filled.
func (s *Slot[T]) Age() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasValue {
		return 0, false
	}
	return time.Since(s.createdAt), true
}

// CreatedAt returns when the slot was last written.
func (s *Slot[T]) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// GetOrRefresh returns the cached value, refreshing via fetch when the
// slot is stale or force is set. Concurrent callers never trigger
// duplicate refreshes: the second waits on the first and reuses its
// result. A failed fetch leaves the previous value and its age intact
// and returns that previous value alongside the error.
func (s *Slot[T]) GetOrRefresh(ctx context.Context, force bool, fetch func(context.Context) (T, error)) (T, error) {
	if !force {
		if v, ok := s.Fresh(); ok {
			return v, nil
		}
	}

	before := s.CreatedAt()

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another refresh may have completed while we waited for the lock
	if cur := s.CreatedAt(); cur.After(before) {
		if v, _, ok := s.Last(); ok {
			return v, nil
		}
	}
	if !force {
		if v, ok := s.Fresh(); ok {
			return v, nil
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		if prev, _, ok := s.Last(); ok {
			return prev, err
		}
		var zero T
		return zero, err
	}

	s.Set(v)
	return v, nil
}
