// Package rtarray implements the allocator-aware dynamic array of
// spec.md §4.3: a growable contiguous sequence backed by an
// arena.Allocator rather than Go's built-in append/growslice, so that its
// growth obeys the same bounded-allocation discipline as the rest of this
// module.
//
// Grounded in the teacher's small-capability-interface style (hashFunc /
// equalFunc in hashtriemap.go) for the Allocator seam, and in
// other_examples/ziutek-ummmalloc__ummmalloc.go's index-based storage
// discipline for treating the backing memory as raw bytes reinterpreted
// through unsafe.Pointer.
package rtarray

import (
	"errors"
	"unsafe"

	"github.com/akiscode/real-time-library/internal/rtassert"
)

// ErrCapacity is returned when a growth operation cannot be satisfied by
// the allocator; the array is left unchanged on failure, per spec.md §4.3.
var ErrCapacity = errors.New("rtarray: allocation failed")

// Allocator is the same seam arena.Arena satisfies; redeclared here to
// avoid importing arena from a package that spec.md §2 places below it in
// the dependency graph only incidentally (rtarray is allocator-agnostic:
// any Allocator works, including HeapAllocator below).
type Allocator interface {
	Alloc(n uintptr) (unsafe.Pointer, error)
	Free(p unsafe.Pointer)
}

// HeapAllocator satisfies Allocator by delegating to the Go heap. It is
// useful for tests and for callers with no fixed arena, trading the
// bounded-time guarantee for unlimited capacity.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n uintptr) (unsafe.Pointer, error) {
	b := make([]byte, n)
	if n == 0 {
		return nil, nil
	}
	return unsafe.Pointer(&b[0]), nil
}

func (HeapAllocator) Free(unsafe.Pointer) {}

// Array is a growable contiguous sequence of T over an Allocator. Indices
// [0, count) hold constructed elements; [count, capacity) is unused
// storage. The zero value is not usable; construct with New.
type Array[T any] struct {
	alloc    Allocator
	data     unsafe.Pointer
	count    int
	capacity int
}

// New constructs an empty array drawing storage from alloc.
func New[T any](alloc Allocator) *Array[T] {
	return &Array[T]{alloc: alloc}
}

func (a *Array[T]) elemSize() uintptr { var z T; return unsafe.Sizeof(z) }

func (a *Array[T]) at(i int) *T {
	return (*T)(unsafe.Add(a.data, uintptr(i)*a.elemSize()))
}

// Len returns the number of constructed elements.
func (a *Array[T]) Len() int { return a.count }

// Cap returns the current backing capacity.
func (a *Array[T]) Cap() int { return a.capacity }

// Empty reports whether the array holds zero elements.
func (a *Array[T]) Empty() bool { return a.count == 0 }

// Index returns a pointer to the element at i. An out-of-range i is a
// precondition violation, not a recoverable error (spec.md §7): it panics
// only when built with -tags rtdebug; release builds do not check.
func (a *Array[T]) Index(i int) *T {
	rtassert.Check(i >= 0 && i < a.count, "rtarray: index out of range")
	return a.at(i)
}

// Front returns a pointer to the first element. Calling it on an empty
// array panics only under -tags rtdebug, as with Index.
func (a *Array[T]) Front() *T { return a.Index(0) }

// Back returns a pointer to the last element. Calling it on an empty
// array panics only under -tags rtdebug, as with Index.
func (a *Array[T]) Back() *T { return a.Index(a.count - 1) }

// Clear destroys all elements (drops references so the GC can reclaim
// them) without releasing backing capacity.
func (a *Array[T]) Clear() {
	var zero T
	for i := 0; i < a.count; i++ {
		*a.at(i) = zero
	}
	a.count = 0
}

// Reserve grows capacity to at least k, if it is not already. Growth
// only: Reserve never shrinks. On allocator failure the array is left
// untouched and ErrCapacity is returned.
func (a *Array[T]) Reserve(k int) error {
	if k <= a.capacity {
		return nil
	}
	newData, err := a.alloc.Alloc(uintptr(k) * a.elemSize())
	if err != nil {
		return ErrCapacity
	}
	if a.count > 0 {
		src := unsafe.Slice((*byte)(a.data), a.count*int(a.elemSize()))
		dst := unsafe.Slice((*byte)(newData), a.count*int(a.elemSize()))
		copy(dst, src)
	}
	old := a.data
	a.data = newData
	a.capacity = k
	if old != nil {
		a.alloc.Free(old)
	}
	return nil
}

func (a *Array[T]) growIfNeeded() error {
	if a.count < a.capacity {
		return nil
	}
	next := a.capacity * 2
	if next == 0 {
		next = 1
	}
	return a.Reserve(next)
}

// PushBack appends v, growing capacity geometrically (doubling, starting
// from 1) if necessary.
func (a *Array[T]) PushBack(v T) error {
	if err := a.growIfNeeded(); err != nil {
		return err
	}
	*a.at(a.count) = v
	a.count++
	return nil
}

// PopBack removes and returns the last element. ok is false if the array
// was empty, in which case the zero value is returned and the array is
// unchanged.
func (a *Array[T]) PopBack() (v T, ok bool) {
	if a.count == 0 {
		return v, false
	}
	a.count--
	v = *a.at(a.count)
	var zero T
	*a.at(a.count) = zero
	return v, true
}

// RemoveFast removes the element at i by swapping it with the last
// element and popping; O(1) but does not preserve order.
func (a *Array[T]) RemoveFast(i int) (v T, ok bool) {
	if i < 0 || i >= a.count {
		return v, false
	}
	v = *a.at(i)
	last := a.count - 1
	if i != last {
		*a.at(i) = *a.at(last)
	}
	var zero T
	*a.at(last) = zero
	a.count--
	return v, true
}

// RemoveStable removes the element at i, shifting subsequent elements
// left to preserve order.
func (a *Array[T]) RemoveStable(i int) (v T, ok bool) {
	if i < 0 || i >= a.count {
		return v, false
	}
	v = *a.at(i)
	for j := i; j < a.count-1; j++ {
		*a.at(j) = *a.at(j + 1)
	}
	var zero T
	a.count--
	*a.at(a.count) = zero
	return v, true
}

// Copy produces a deep copy of a across the same allocator. On allocation
// failure it returns an error and a.Itself is left unchanged (Copy never
// mutates its receiver).
func (a *Array[T]) Copy() (*Array[T], error) {
	out := New[T](a.alloc)
	if a.count == 0 {
		return out, nil
	}
	if err := out.Reserve(a.count); err != nil {
		return nil, err
	}
	for i := 0; i < a.count; i++ {
		*out.at(i) = *a.at(i)
	}
	out.count = a.count
	return out, nil
}

// Equal reports element-wise equality between a and b.
func Equal[T comparable](a, b *Array[T]) bool {
	if a.count != b.count {
		return false
	}
	for i := 0; i < a.count; i++ {
		if *a.at(i) != *b.at(i) {
			return false
		}
	}
	return true
}

// Release returns the array's backing storage to its allocator. The
// array must not be used afterward.
func (a *Array[T]) Release() {
	if a.data != nil {
		a.alloc.Free(a.data)
		a.data = nil
		a.count, a.capacity = 0, 0
	}
}
