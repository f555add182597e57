// Package rc implements the strong/weak reference-counted handles of
// spec.md §4.7. A control block holds atomic strong and weak counts;
// strong increments from 0 also bump weak (the "life token"), so the
// control block outlives the pointee for exactly as long as a weak handle
// might still try to Lock it.
//
// Grounded in spec.md §4.7's exact increment/decrement protocol and in
// §9's note that "factories create the control block and pointee in
// separate allocations so the control block may outlive the pointee";
// both allocations go through the same Allocator seam arena.Arena
// satisfies, mirroring rtarray and rthash.
package rc

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// Allocator is the seam both the pointee and its control block are
// allocated from.
type Allocator interface {
	Alloc(n uintptr) (unsafe.Pointer, error)
	Free(p unsafe.Pointer)
}

// ErrCapacity is returned when a factory cannot obtain storage for the
// pointee or its control block.
var ErrCapacity = errors.New("rc: allocation failed")

type controlBlock[T any] struct {
	alloc  Allocator
	obj    *T
	strong atomic.Uint32
	weak   atomic.Uint32
}

// decrement is the atomic.Uint32 idiom for -1: Add(^uint32(0)).
const decrement = ^uint32(0)

// Strong is a strong reference to a T. The zero value is a null handle.
type Strong[T any] struct {
	cb *controlBlock[T]
}

// Weak is a weak reference: it does not keep the pointee alive, but keeps
// the control block alive so Lock can safely observe whether it still is.
type Weak[T any] struct {
	cb *controlBlock[T]
}

// New allocates v and a control block for it (in separate allocations) and
// returns a Strong handle with strong=1, weak=1.
func New[T any](alloc Allocator, v T) (Strong[T], error) {
	objRaw, err := alloc.Alloc(unsafe.Sizeof(v))
	if err != nil {
		return Strong[T]{}, ErrCapacity
	}
	obj := (*T)(objRaw)
	*obj = v

	cbRaw, err := alloc.Alloc(unsafe.Sizeof(controlBlock[T]{}))
	if err != nil {
		alloc.Free(objRaw)
		return Strong[T]{}, ErrCapacity
	}
	cb := (*controlBlock[T])(cbRaw)
	*cb = controlBlock[T]{alloc: alloc, obj: obj}
	cb.strong.Store(1)
	cb.weak.Store(1)
	return Strong[T]{cb: cb}, nil
}

// Get returns a pointer to the pointee, or nil for a null or already-freed
// handle.
func (s Strong[T]) Get() *T {
	if s.cb == nil {
		return nil
	}
	return s.cb.obj
}

// IsNull reports whether s holds no control block.
func (s Strong[T]) IsNull() bool { return s.cb == nil }

// Clone increments strong; if strong was 0 (an already-released handle
// sharing a live control block, which should not normally occur through
// this API) it also bumps weak, per spec.md §4.7's life-token rule.
func (s Strong[T]) Clone() Strong[T] {
	if s.cb == nil {
		return Strong[T]{}
	}
	if s.cb.strong.Add(1)-1 == 0 {
		s.cb.weak.Add(1)
	}
	return Strong[T]{cb: s.cb}
}

// Downgrade returns a Weak handle sharing s's control block, incrementing
// weak.
func (s Strong[T]) Downgrade() Weak[T] {
	if s.cb == nil {
		return Weak[T]{}
	}
	s.cb.weak.Add(1)
	return Weak[T]{cb: s.cb}
}

// Release decrements strong. If strong was 1, the pointee is destroyed
// (zeroed, dropping any references it held) and its storage released,
// then weak is decremented; if that brings weak to 0 the control block's
// storage is released too.
func (s Strong[T]) Release() {
	if s.cb == nil {
		return
	}
	if s.cb.strong.Add(decrement) == 0 {
		var zero T
		*s.cb.obj = zero
		s.cb.alloc.Free(unsafe.Pointer(s.cb.obj))
		s.cb.obj = nil
		if s.cb.weak.Add(decrement) == 0 {
			s.cb.alloc.Free(unsafe.Pointer(s.cb))
		}
	}
}

// IsNull reports whether w holds no control block.
func (w Weak[T]) IsNull() bool { return w.cb == nil }

// Clone increments weak.
func (w Weak[T]) Clone() Weak[T] {
	if w.cb == nil {
		return Weak[T]{}
	}
	w.cb.weak.Add(1)
	return Weak[T]{cb: w.cb}
}

// Lock attempts to produce a Strong handle by bumping strong from its
// current value via compare-and-exchange; it fails if strong is already 0.
func (w Weak[T]) Lock() (Strong[T], bool) {
	if w.cb == nil {
		return Strong[T]{}, false
	}
	for {
		cur := w.cb.strong.Load()
		if cur == 0 {
			return Strong[T]{}, false
		}
		if w.cb.strong.CompareAndSwap(cur, cur+1) {
			return Strong[T]{cb: w.cb}, true
		}
	}
}

// Release decrements weak, releasing the control block's storage if that
// brings it to 0.
func (w Weak[T]) Release() {
	if w.cb == nil {
		return
	}
	if w.cb.weak.Add(decrement) == 0 {
		w.cb.alloc.Free(unsafe.Pointer(w.cb))
	}
}
