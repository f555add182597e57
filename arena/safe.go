package arena

import (
	"sync"
	"unsafe"

	"github.com/akiscode/real-time-library/rtsync"
)

// Safe wraps an Arena with a lock around every entry point, satisfying
// spec.md §5's "thread-safe wrapper adds a mutex around each entry point...
// null-mutex variant... at zero overhead". The arena itself remains
// single-threaded; Safe is what callers reach for when multiple goroutines
// share one Arena. The lock is an rtsync.Locker so callers can supply
// *sync.Mutex (the default), rtsync.SpinMutex for short critical sections,
// or rtsync.NoopMutex to opt back out of synchronization without changing
// call sites.
type Safe struct {
	mu rtsync.Locker
	a  *Arena
}

// NewSafe wraps an already-constructed Arena with a plain *sync.Mutex.
func NewSafe(a *Arena) *Safe { return NewSafeWithLocker(a, new(sync.Mutex)) }

// NewSafeWithLocker wraps an already-constructed Arena with the given lock,
// e.g. rtsync.NoopMutex for the zero-overhead variant or rtsync.SpinMutex
// for very short critical sections.
func NewSafeWithLocker(a *Arena, l rtsync.Locker) *Safe { return &Safe{a: a, mu: l} }

func (s *Safe) Alloc(n uintptr) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(n)
}

func (s *Safe) Free(p unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(p)
}

func (s *Safe) UsedBytes() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.UsedBytes()
}

func (s *Safe) CapacityBytes() uintptr { return s.a.CapacityBytes() }

var _ Allocator = (*Safe)(nil)
