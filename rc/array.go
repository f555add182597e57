package rc

import (
	"sync/atomic"
	"unsafe"

	"github.com/akiscode/real-time-library/internal/rtassert"
)

// arrayControlBlock is controlBlock's counterpart for a contiguous run of
// n elements; per spec.md §4.7 "array variants carry an element count and
// destroy each element in order."
type arrayControlBlock[T any] struct {
	alloc  Allocator
	obj    unsafe.Pointer
	n      int
	strong atomic.Uint32
	weak   atomic.Uint32
}

// StrongArray is a strong reference to a contiguous run of T.
type StrongArray[T any] struct {
	cb *arrayControlBlock[T]
}

// WeakArray is a weak reference to a StrongArray's control block.
type WeakArray[T any] struct {
	cb *arrayControlBlock[T]
}

// NewArray allocates n zero-valued T contiguously and a control block for
// them, returning a StrongArray with strong=1, weak=1.
func NewArray[T any](alloc Allocator, n int) (StrongArray[T], error) {
	var zero T
	sz := unsafe.Sizeof(zero)
	raw, err := alloc.Alloc(uintptr(n) * sz)
	if err != nil {
		return StrongArray[T]{}, ErrCapacity
	}
	for i := 0; i < n; i++ {
		*(*T)(unsafe.Add(raw, uintptr(i)*sz)) = zero
	}

	cbRaw, err := alloc.Alloc(unsafe.Sizeof(arrayControlBlock[T]{}))
	if err != nil {
		alloc.Free(raw)
		return StrongArray[T]{}, ErrCapacity
	}
	cb := (*arrayControlBlock[T])(cbRaw)
	*cb = arrayControlBlock[T]{alloc: alloc, obj: raw, n: n}
	cb.strong.Store(1)
	cb.weak.Store(1)
	return StrongArray[T]{cb: cb}, nil
}

// Len returns the element count.
func (a StrongArray[T]) Len() int { return a.cb.n }

// At returns a pointer to element i. Out-of-range i is a precondition
// violation (spec.md §7); debug builds catch it via rtassert, release
// builds do not check.
func (a StrongArray[T]) At(i int) *T {
	rtassert.Check(i >= 0 && i < a.cb.n, "rc: array index out of range")
	var zero T
	return (*T)(unsafe.Add(a.cb.obj, uintptr(i)*unsafe.Sizeof(zero)))
}

// IsNull reports whether a holds no control block.
func (a StrongArray[T]) IsNull() bool { return a.cb == nil }

// Clone increments strong, applying the life-token rule on a 0->1
// transition.
func (a StrongArray[T]) Clone() StrongArray[T] {
	if a.cb == nil {
		return StrongArray[T]{}
	}
	if a.cb.strong.Add(1)-1 == 0 {
		a.cb.weak.Add(1)
	}
	return StrongArray[T]{cb: a.cb}
}

// Downgrade returns a WeakArray sharing a's control block.
func (a StrongArray[T]) Downgrade() WeakArray[T] {
	if a.cb == nil {
		return WeakArray[T]{}
	}
	a.cb.weak.Add(1)
	return WeakArray[T]{cb: a.cb}
}

// Release decrements strong; at 0, destroys every element in order,
// releases the backing storage, then decrements weak, releasing the
// control block if that reaches 0.
func (a StrongArray[T]) Release() {
	if a.cb == nil {
		return
	}
	if a.cb.strong.Add(decrement) == 0 {
		var zero T
		sz := unsafe.Sizeof(zero)
		for i := 0; i < a.cb.n; i++ {
			*(*T)(unsafe.Add(a.cb.obj, uintptr(i)*sz)) = zero
		}
		a.cb.alloc.Free(a.cb.obj)
		a.cb.obj = nil
		if a.cb.weak.Add(decrement) == 0 {
			a.cb.alloc.Free(unsafe.Pointer(a.cb))
		}
	}
}

// Lock attempts to produce a StrongArray, failing if strong is 0.
func (w WeakArray[T]) Lock() (StrongArray[T], bool) {
	if w.cb == nil {
		return StrongArray[T]{}, false
	}
	for {
		cur := w.cb.strong.Load()
		if cur == 0 {
			return StrongArray[T]{}, false
		}
		if w.cb.strong.CompareAndSwap(cur, cur+1) {
			return StrongArray[T]{cb: w.cb}, true
		}
	}
}

// Release decrements weak, releasing the control block's storage at 0.
func (w WeakArray[T]) Release() {
	if w.cb == nil {
		return
	}
	if w.cb.weak.Add(decrement) == 0 {
		w.cb.alloc.Free(unsafe.Pointer(w.cb))
	}
}
