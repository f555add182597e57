package rtlru

import (
	"sync"

	"github.com/akiscode/real-time-library/rtsync"
)

// Safe wraps a Cache with a lock around every entry point, mirroring
// go-ethereum's common/lru.Cache (which wraps its own BasicLRU in exactly
// this way: a single sync.Mutex held for the duration of each method).
// rtlru.Cache itself stays unsynchronized per spec.md §4.6/§5, the same way
// arena.Arena does; Safe is what callers reach for when multiple goroutines
// share one Cache.
type Safe[K comparable, V any] struct {
	mu rtsync.Locker
	c  *Cache[K, V]
}

// NewSafe wraps an already-constructed Cache with a plain *sync.Mutex.
func NewSafe[K comparable, V any](c *Cache[K, V]) *Safe[K, V] {
	return NewSafeWithLocker(c, new(sync.Mutex))
}

// NewSafeWithLocker wraps an already-constructed Cache with the given lock.
func NewSafeWithLocker[K comparable, V any](c *Cache[K, V], l rtsync.Locker) *Safe[K, V] {
	return &Safe[K, V]{c: c, mu: l}
}

func (s *Safe[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Get(k)
}

func (s *Safe[K, V]) Contains(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Contains(k)
}

func (s *Safe[K, V]) Put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Put(k, v)
}

func (s *Safe[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Len()
}

func (s *Safe[K, V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Reset()
}
