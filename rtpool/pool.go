// Package rtpool implements the object pool of spec.md §4.5: a typed free
// list of individually-allocated slots plus an elasticity that controls how
// many slots are added at once when the pool runs dry.
//
// Grounded directly in original_source/librtlcpp/include/rtlcpp/object_pool.hpp:
// each slot is its own allocation (not one shared block), Get pops the free
// list's tail and constructs in place, Put destructs then recycles, and
// AddToPool pre-allocates raw storage without construction. The free list
// itself is an rtarray.Array of *T, generalizing the original's
// rtl::vector<T*, Alloc>.
package rtpool

import (
	"errors"
	"unsafe"

	"github.com/akiscode/real-time-library/rtarray"
)

// Allocator is the seam this pool draws per-slot storage from.
type Allocator = rtarray.Allocator

// ErrCapacity is returned when a Get cannot refill the pool because the
// allocator failed.
var ErrCapacity = errors.New("rtpool: allocation failed")

// Pool is a typed free list over Allocator. The zero value is not usable;
// construct with New.
type Pool[T any] struct {
	alloc      Allocator
	free       *rtarray.Array[*T]
	blocks     []unsafe.Pointer
	elasticity int
}

// New constructs a pool with numObjects pre-allocated (unconstructed) slots
// and the given elasticity (clamped to at least 1).
func New[T any](alloc Allocator, numObjects int, elasticity int) *Pool[T] {
	if elasticity < 1 {
		elasticity = 1
	}
	p := &Pool[T]{
		alloc:      alloc,
		free:       rtarray.New[*T](alloc),
		elasticity: elasticity,
	}
	p.AddToPool(numObjects)
	return p
}

func (p *Pool[T]) elemSize() uintptr { var z T; return unsafe.Sizeof(z) }

// AddToPool pre-allocates numObjects raw, unconstructed slots and returns
// how many were actually allocated (fewer than requested if the allocator
// ran out partway through).
func (p *Pool[T]) AddToPool(numObjects int) int {
	if numObjects <= 0 {
		return 0
	}
	if err := p.free.Reserve(p.free.Len() + numObjects); err != nil {
		return 0
	}
	for i := 0; i < numObjects; i++ {
		raw, err := p.alloc.Alloc(p.elemSize())
		if err != nil {
			return i
		}
		p.blocks = append(p.blocks, raw)
		slot := (*T)(raw)
		if err := p.free.PushBack(slot); err != nil {
			p.alloc.Free(raw)
			p.blocks = p.blocks[:len(p.blocks)-1]
			return i
		}
	}
	return numObjects
}

// Get pops a free slot, constructs it as v, and returns a pointer to it.
// If the pool is empty it refills by Elasticity() slots first; nil is
// returned if that refill cannot obtain even one slot.
func (p *Pool[T]) Get(v T) *T {
	if p.free.Empty() {
		if p.AddToPool(p.elasticity) < 1 {
			return nil
		}
	}
	slot, _ := p.free.PopBack()
	*slot = v
	return slot
}

// Handle is the scoped handle GetAuto returns: Release destructs the value
// and recycles the slot. Calling Release more than once is a no-op.
type Handle[T any] struct {
	pool *Pool[T]
	ptr  *T
}

// Value returns the pointer to the held object, or nil if the underlying
// Get failed.
func (h *Handle[T]) Value() *T { return h.ptr }

// Release returns the slot to the pool, per spec.md §4.5's "when it leaves
// the caller's scope, the value is destructed and the slot returned."
func (h *Handle[T]) Release() {
	if h.ptr == nil {
		return
	}
	h.pool.Put(h.ptr)
	h.ptr = nil
}

// GetAuto returns a scoped Handle constructed as v; callers should
// `defer h.Release()`.
func (p *Pool[T]) GetAuto(v T) *Handle[T] {
	return &Handle[T]{pool: p, ptr: p.Get(v)}
}

// Put destructs in (zeroing it so the GC can reclaim any references it
// held) and returns the slot to the free list. Passing nil is a no-op.
func (p *Pool[T]) Put(in *T) {
	if in == nil {
		return
	}
	var zero T
	*in = zero
	p.free.PushBack(in)
}

// Len reports the number of slots currently on the free list.
func (p *Pool[T]) Len() int { return p.free.Len() }

// Empty reports whether the free list is empty.
func (p *Pool[T]) Empty() bool { return p.free.Empty() }

// Elasticity returns the current refill batch size.
func (p *Pool[T]) Elasticity() int { return p.elasticity }

// SetElasticity changes the refill batch size (clamped to at least 1).
func (p *Pool[T]) SetElasticity(elasticity int) {
	if elasticity < 1 {
		elasticity = 1
	}
	p.elasticity = elasticity
}

// Release returns every raw slot the pool ever allocated to its allocator.
// It does not call any per-slot destructor beyond what Put already did for
// recycled slots; slots still checked out are the caller's responsibility.
// The pool must not be used afterward.
func (p *Pool[T]) Release() {
	for _, b := range p.blocks {
		p.alloc.Free(b)
	}
	p.blocks = nil
	p.free.Release()
}
