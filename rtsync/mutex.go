// Package rtsync provides the mutex and slumber (cooperative-wait) families
// used to serialize access to the otherwise unsynchronized containers in
// this module, plus a family of backoff (slumber) strategies.
//
// Every capability in this package is a small interface with a handful of
// concrete implementations chosen once at construction time, the same
// "choose one at configuration time" shape the allocator and slumber
// families use elsewhere in this module.
package rtsync

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// cacheLineSize mirrors the reference map implementation's CacheLineSize:
// computed once from golang.org/x/sys/cpu rather than hardcoded per arch.
const cacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// Locker is the mutex capability required by every synchronized wrapper in
// this module. *sync.Mutex already satisfies it.
type Locker interface {
	Lock()
	TryLock() bool
	Unlock()
}

// NoopMutex is a zero-overhead Locker for single-threaded callers that still
// need to satisfy a Locker-shaped API, e.g. arena.NewSafeWithLocker.
type NoopMutex struct{}

func (NoopMutex) Lock()         {}
func (NoopMutex) TryLock() bool { return true }
func (NoopMutex) Unlock()       {}

// spinPad prevents false sharing of the spin flag with neighboring fields;
// sized against the platform cache line the same way the reference map
// implementation pads its striped counters.
type spinPad [cacheLineSize]byte

// SpinMutex is a userspace spinlock: acquire via atomic compare-and-swap,
// backing off with a relaxed hot-spin (runtime.Gosched) between attempts.
// Appropriate only for very short critical sections; it never parks the
// goroutine on the OS scheduler the way sync.Mutex eventually does.
type SpinMutex struct {
	_      spinPad
	locked atomic.Bool
}

func (m *SpinMutex) Lock() {
	for !m.TryLock() {
		runtime.Gosched()
	}
}

func (m *SpinMutex) TryLock() bool {
	return m.locked.CompareAndSwap(false, true)
}

func (m *SpinMutex) Unlock() {
	m.locked.Store(false)
}

// Guard acquires l and returns a function that releases it, so that callers
// can write `defer rtsync.Guard(l)()` for scoped, exit-path-safe release.
func Guard(l Locker) func() {
	l.Lock()
	return l.Unlock
}

var _ Locker = (*sync.Mutex)(nil)
