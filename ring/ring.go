// Package ring implements the SPSC (single-producer/single-consumer)
// lock-free ring buffer of spec.md §4.2: a byte queue with contiguous-
// region views for zero-copy I/O. Exactly one goroutine may call the
// writer methods (Write, WriteBytes, AllocContig, CompoundAllocContig,
// CommitWrite); exactly one goroutine may call the reader methods (Read,
// ReadContig, CommitRead). Violating that contract is undefined behavior,
// per spec.md §5.
//
// Grounded in _examples/Pam-La-jmt_for_mac/internal/async/ring_buffer.go's
// atomic index discipline, adapted from its MPMC sequence/CAS design down
// to the simpler SPSC acquire/release load/store the spec requires (SPSC
// needs no CAS: only one goroutine ever writes each index).
package ring

import (
	"errors"
	"sync/atomic"

	"github.com/akiscode/real-time-library/internal/rtassert"
	"golang.org/x/sys/cpu"
)

// ErrInvalidCapacity is returned by New when cap is too small to
// distinguish full from empty (capacity must be >= 2).
var ErrInvalidCapacity = errors.New("ring: capacity must be >= 2")

// ErrWouldOverflow is returned by Write (the all-or-nothing writer) when n
// exceeds the currently free space; use WriteBytes for a partial write.
var ErrWouldOverflow = errors.New("ring: write exceeds free space")

// Ring is an SPSC byte queue over a caller-owned buffer. The zero value is
// not usable; construct with New.
type Ring struct {
	buf []byte
	cap int

	_        cpu.CacheLinePad
	readIdx  atomic.Uint64
	_        cpu.CacheLinePad
	writeIdx atomic.Uint64
	_        cpu.CacheLinePad
}

// New wraps buf as a ring buffer. Writable capacity is len(buf)-1: one
// slot is reserved to disambiguate full from empty.
func New(buf []byte) (*Ring, error) {
	if len(buf) < 2 {
		return nil, ErrInvalidCapacity
	}
	return &Ring{buf: buf, cap: len(buf)}, nil
}

// Len returns the capacity of the underlying buffer (including the
// reserved disambiguation slot).
func (r *Ring) Len() int { return r.cap }

// WritableCapacity returns the maximum number of bytes that can be
// in-flight at once: len(buf)-1.
func (r *Ring) WritableCapacity() int { return r.cap - 1 }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// freeSpace is called by the writer: its own index needs no
// synchronization (only it writes it); the reader's index is read with
// acquire semantics since it changes concurrently.
func (r *Ring) freeSpace() (writeIdx int, free int) {
	w := int(r.writeIdx.Load())
	rd := int(r.readIdx.Load())
	free = (rd - w - 1 + r.cap) % r.cap
	return w, free
}

func (r *Ring) available() (readIdx int, avail int) {
	rd := int(r.readIdx.Load())
	w := int(r.writeIdx.Load())
	avail = (w - rd + r.cap) % r.cap
	return rd, avail
}

// copyIn writes p into buf starting at idx, wrapping at most once.
func copyIn(buf []byte, idx int, p []byte) {
	first := min(len(p), len(buf)-idx)
	copy(buf[idx:], p[:first])
	if first < len(p) {
		copy(buf[0:], p[first:])
	}
}

// copyOut reads len(p) bytes from buf starting at idx into p, wrapping at
// most once.
func copyOut(buf []byte, idx int, p []byte) {
	first := min(len(p), len(buf)-idx)
	copy(p[:first], buf[idx:])
	if first < len(p) {
		copy(p[first:], buf[0:])
	}
}

// WriteBytes writes min(len(p), free space) bytes, splitting into up to
// two copies if the write wraps, and reports how many bytes it wrote.
func (r *Ring) WriteBytes(p []byte) int {
	w, free := r.freeSpace()
	n := min(len(p), free)
	if n == 0 {
		return 0
	}
	copyIn(r.buf, w, p[:n])
	r.writeIdx.Store(uint64((w + n) % r.cap))
	return n
}

// Write is the all-or-nothing writer: it fails if p does not entirely fit
// in the currently free space, and writes nothing in that case.
func (r *Ring) Write(p []byte) error {
	_, free := r.freeSpace()
	if len(p) > free {
		return ErrWouldOverflow
	}
	n := r.WriteBytes(p)
	// only the reader changes free space concurrently, and it can only grow
	// it, so this cannot happen under the SPSC contract.
	rtassert.Check(n == len(p), "ring: Write short-wrote under exclusive-writer contract")
	return nil
}

// Read reads min(len(p), available bytes) bytes and reports how many it
// read.
func (r *Ring) Read(p []byte) int {
	rd, avail := r.available()
	n := min(len(p), avail)
	if n == 0 {
		return 0
	}
	copyOut(r.buf, rd, p[:n])
	r.readIdx.Store(uint64((rd + n) % r.cap))
	return n
}

// AllocContig returns a view into the buffer starting at the current
// write position, of the largest contiguous prefix available, up to n
// bytes. atEOB distinguishes, when the returned region is shorter than n,
// whether the reader is the limiting factor (atEOB=false, waiting for the
// reader to advance may help) or the physical end of the buffer is
// (atEOB=true, waiting will not help — a wrap is needed, which only
// becomes visible on a later call after CommitWrite). The caller must
// call CommitWrite with the number of bytes actually produced; the
// returned slice is invalidated by any subsequent commit.
func (r *Ring) AllocContig(n int) (region []byte, atEOB bool) {
	w, free := r.freeSpace()
	if free == 0 {
		return nil, false
	}
	toEnd := r.cap - w
	avail := min(free, toEnd)
	length := min(n, avail)
	if length < n && toEnd <= free {
		atEOB = true
	}
	return r.buf[w : w+length], atEOB
}

// CommitWrite advances the write index by k, publishing the bytes written
// into the region most recently returned by AllocContig or
// CompoundAllocContig to the reader.
func (r *Ring) CommitWrite(k int) {
	w := int(r.writeIdx.Load())
	r.writeIdx.Store(uint64((w + k) % r.cap))
}

// CompoundAllocContig returns up to two spans describing all currently
// free space: the trailing region from the write index, and, when the
// free region wraps past the physical end of the buffer, a second region
// starting at the buffer's base. Exactly one of: both empty (full); only
// first nonempty (no wrap needed to use all free space); both nonempty
// (a wrap is available). writeAheadOfRead reports whether the write index
// is currently numerically ahead of the read index, for callers that want
// to reason about wrap state without recomputing it.
func (r *Ring) CompoundAllocContig() (first, second []byte, writeAheadOfRead bool) {
	w, free := r.freeSpace()
	rd := int(r.readIdx.Load())
	ahead := w >= rd
	if free == 0 {
		return nil, nil, ahead
	}
	toEnd := r.cap - w
	firstLen := min(free, toEnd)
	first = r.buf[w : w+firstLen]
	if remaining := free - firstLen; remaining > 0 {
		second = r.buf[0:remaining]
	}
	return first, second, ahead
}

// ReadContig mirrors AllocContig for the reader: the largest contiguous
// prefix of available (unread) bytes, up to n. When the region is shorter
// than n, atEOB reports whether the physical end of the buffer is the
// limit (true; the wrapped bytes become visible on a later call after
// CommitRead) rather than the writer (false). The returned slice is
// invalidated by any subsequent CommitRead or Read.
func (r *Ring) ReadContig(n int) (region []byte, atEOB bool) {
	rd, avail := r.available()
	toEnd := r.cap - rd
	length := min(n, min(avail, toEnd))
	if length < n && toEnd <= avail {
		atEOB = true
	}
	return r.buf[rd : rd+length], atEOB
}

// CommitRead advances the read index by k, the number of bytes the reader
// actually consumed from the region returned by ReadContig.
func (r *Ring) CommitRead(k int) {
	rd := int(r.readIdx.Load())
	r.readIdx.Store(uint64((rd + k) % r.cap))
}

// IsEmpty reports whether the read and write indices currently coincide.
// Only meaningful as an instantaneous snapshot from either thread's own
// perspective; the other side may be mid-commit.
func (r *Ring) IsEmpty() bool {
	return r.readIdx.Load() == r.writeIdx.Load()
}

// IsFull reports whether the writer currently has zero free space.
func (r *Ring) IsFull() bool {
	_, free := r.freeSpace()
	return free == 0
}
