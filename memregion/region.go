// Package memregion is the backing-region resource wrapper of spec.md §6:
// "a way to obtain a large backing region -- typically via an anonymous
// virtual-memory mapping... init(capacity) -> allocates capacity bytes of
// backing memory, and uninit() -> releases it." It is the arena's usual
// buffer source but is orthogonal to arena.Arena itself.
//
// Grounded in spec.md §6 directly; golang.org/x/sys/unix.Mmap/Munmap
// supply the anonymous mapping, consistent with this module's reach for
// golang.org/x/sys over a bare stdlib rendition wherever the pack's stack
// already covers the concern.
package memregion

import (
	"errors"

	"golang.org/x/sys/unix"
)

var (
	// ErrAlreadyInitialized is returned by Init on a Region that already
	// holds a mapping.
	ErrAlreadyInitialized = errors.New("memregion: already initialized")
	// ErrNotInitialized is returned by Uninit on a Region with no mapping.
	ErrNotInitialized = errors.New("memregion: not initialized")
	// ErrInvalidCapacity is returned by Init for a non-positive capacity.
	ErrInvalidCapacity = errors.New("memregion: capacity must be positive")
)

// Region owns one anonymous memory mapping. The zero value is unmapped.
type Region struct {
	buf []byte
}

// Init maps capacity bytes of zero-filled, read-write anonymous memory.
func (r *Region) Init(capacity int) error {
	if r.buf != nil {
		return ErrAlreadyInitialized
	}
	if capacity <= 0 {
		return ErrInvalidCapacity
	}
	buf, err := unix.Mmap(-1, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return err
	}
	r.buf = buf
	return nil
}

// Uninit releases the mapping.
func (r *Region) Uninit() error {
	if r.buf == nil {
		return ErrNotInitialized
	}
	if err := unix.Munmap(r.buf); err != nil {
		return err
	}
	r.buf = nil
	return nil
}

// Bytes returns the mapped region, suitable as an arena.New buffer. It is
// nil if the Region is not currently initialized.
func (r *Region) Bytes() []byte { return r.buf }

// Capacity returns the mapped size in bytes, or 0 if uninitialized.
func (r *Region) Capacity() int { return len(r.buf) }
