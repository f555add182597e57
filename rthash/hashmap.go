// Package rthash implements the amortized-rehash hash table of spec.md
// §4.4: a primary/secondary dual bucket-array table that migrates a bounded
// quota of entries per public call instead of stopping the world for a
// single rehash, plus the FNV-1a hashing it keys on.
//
// Grounded in the teacher's two-table resize strategy (mapof.go's
// oldTable/newTable swap during growth) generalized from "one atomic swap"
// to "swap spread across many calls", and in rtarray.Array for the
// per-bucket storage so insertion growth obeys the same allocator
// discipline as the rest of this module.
package rthash

import (
	"errors"

	"github.com/akiscode/real-time-library/rtarray"
)

// State is the table's rehash phase.
type State int32

const (
	StateError State = iota
	StateStable
	StateTransfer
)

func (s State) String() string {
	switch s {
	case StateStable:
		return "stable"
	case StateTransfer:
		return "transfer"
	default:
		return "error"
	}
}

// migrateQuota bounds the amortized migration work performed by any single
// public call, per spec.md §4.4 and invariant 8.
const migrateQuota = 512

// defaultLoadFactor is the average chain length (entries per bucket) a
// STABLE table tolerates before beginning a resize; 500% in spec.md's
// percent terms.
const defaultLoadFactor = 5.0

// ErrTableError is returned by mutators once the table has entered
// StateError; per spec.md §4.4, "subsequent operations are no-ops
// reporting failure."
var ErrTableError = errors.New("rthash: table is in error state")

// Allocator is the seam rtarray.Array draws storage from.
type Allocator = rtarray.Allocator

type entry[K comparable, V any] struct {
	hash uint32
	key  K
	val  V
}

// bucketTable is one generation (primary or secondary) of the table: a
// fixed-size array of lazily-allocated buckets, each a dynamic array of
// entries.
type bucketTable[K comparable, V any] struct {
	buckets []*rtarray.Array[entry[K, V]]
	alloc   Allocator
}

func newBucketTable[K comparable, V any](alloc Allocator, n uint64) *bucketTable[K, V] {
	return &bucketTable[K, V]{buckets: make([]*rtarray.Array[entry[K, V]], n), alloc: alloc}
}

func (t *bucketTable[K, V]) bucketCount() uint64 { return uint64(len(t.buckets)) }

func (t *bucketTable[K, V]) bucketFor(hash uint32) int {
	return int(uint64(hash) % t.bucketCount())
}

func (t *bucketTable[K, V]) ensureBucket(i int) *rtarray.Array[entry[K, V]] {
	if t.buckets[i] == nil {
		t.buckets[i] = rtarray.New[entry[K, V]](t.alloc)
	}
	return t.buckets[i]
}

func (t *bucketTable[K, V]) get(hash uint32, key K) (V, bool) {
	var zero V
	b := t.buckets[t.bucketFor(hash)]
	if b == nil {
		return zero, false
	}
	for i := 0; i < b.Len(); i++ {
		e := b.Index(i)
		if e.hash == hash && e.key == key {
			return e.val, true
		}
	}
	return zero, false
}

func (t *bucketTable[K, V]) contains(hash uint32, key K) bool {
	_, ok := t.get(hash, key)
	return ok
}

// insert updates the entry in place if key is already present, else
// appends. Returns the allocator error from a bucket growth, if any; the
// table is left unchanged on failure since rtarray.PushBack never mutates
// on its own failure path.
func (t *bucketTable[K, V]) insert(e entry[K, V]) error {
	b := t.ensureBucket(t.bucketFor(e.hash))
	for i := 0; i < b.Len(); i++ {
		existing := b.Index(i)
		if existing.hash == e.hash && existing.key == e.key {
			existing.val = e.val
			return nil
		}
	}
	return b.PushBack(e)
}

func (t *bucketTable[K, V]) delete(hash uint32, key K) (V, bool) {
	var zero V
	b := t.buckets[t.bucketFor(hash)]
	if b == nil {
		return zero, false
	}
	for i := 0; i < b.Len(); i++ {
		e := b.Index(i)
		if e.hash == hash && e.key == key {
			v := e.val
			b.RemoveFast(i)
			return v, true
		}
	}
	return zero, false
}

// Map is the amortized-rehash hash table of spec.md §4.4.
type Map[K comparable, V any] struct {
	alloc          Allocator
	hashFn         func(K) uint32
	loadFactor     float64
	sizeLocked     bool
	initialBuckets uint64

	primary       *bucketTable[K, V]
	secondary     *bucketTable[K, V]
	state         State
	length        int
	migrateBucket int
}

// Option configures a Map at construction.
type Option[K comparable, V any] func(*Map[K, V])

// WithLoadFactor overrides the default average-chain-length threshold (5.0)
// that triggers a resize.
func WithLoadFactor[K comparable, V any](factor float64) Option[K, V] {
	return func(m *Map[K, V]) { m.loadFactor = factor }
}

// WithHashFunc overrides the default per-type FNV-1a dispatch.
func WithHashFunc[K comparable, V any](fn func(K) uint32) Option[K, V] {
	return func(m *Map[K, V]) { m.hashFn = fn }
}

// WithInitialBuckets requests an initial bucket count; the table rounds up
// to the next table prime.
func WithInitialBuckets[K comparable, V any](n uint64) Option[K, V] {
	return func(m *Map[K, V]) { m.initialBuckets = n }
}

// New constructs an empty, STABLE table drawing bucket storage from alloc.
func New[K comparable, V any](alloc Allocator, opts ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		alloc:      alloc,
		hashFn:     defaultHashFn[K](),
		loadFactor: defaultLoadFactor,
		state:      StateStable,
	}
	for _, opt := range opts {
		opt(m)
	}
	n := m.initialBuckets
	if n == 0 {
		n = PrimeAt(5)
	}
	if ceil, ok := NextPrimeCeil(n); ok {
		n = ceil
	}
	m.primary = newBucketTable[K, V](alloc, n)
	return m
}

// State reports the table's current rehash phase.
func (m *Map[K, V]) State() State { return m.state }

// Len reports the number of live keys.
func (m *Map[K, V]) Len() int { return m.length }

// LockSize suppresses (or re-enables) automatic resizing, per spec.md
// §4.4's "callers may opt into a lock size mode".
func (m *Map[K, V]) LockSize(lock bool) { m.sizeLocked = lock }

// Get looks up k, checking secondary before primary while in TRANSFER per
// spec.md §4.4's lookup order.
func (m *Map[K, V]) Get(k K) (V, bool) {
	m.migrateStep(migrateQuota)
	h := m.hashFn(k)
	if m.state == StateTransfer {
		if v, ok := m.secondary.get(h, k); ok {
			return v, true
		}
	}
	return m.primary.get(h, k)
}

// Contains reports whether k is present.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Put inserts or updates k -> v.
func (m *Map[K, V]) Put(k K, v V) error {
	if m.state == StateError {
		return ErrTableError
	}
	m.migrateStep(migrateQuota)
	h := m.hashFn(k)

	if m.state == StateTransfer {
		existedSecondary := m.secondary.contains(h, k)
		existedPrimary := false
		if _, ok := m.primary.get(h, k); ok {
			existedPrimary = true
		}
		if existedPrimary {
			// Moved into the secondary slot before the new value is
			// constructed there, per spec.md's documented (if scrutinized)
			// ordering: a failed insert below leaves this entry gone.
			m.primary.delete(h, k)
		}
		if err := m.secondary.insert(entry[K, V]{hash: h, key: k, val: v}); err != nil {
			m.state = StateError
			return err
		}
		if !existedSecondary && !existedPrimary {
			m.length++
		}
		return nil
	}

	wasNew := !m.primary.contains(h, k)
	if err := m.primary.insert(entry[K, V]{hash: h, key: k, val: v}); err != nil {
		m.state = StateError
		return err
	}
	if wasNew {
		m.length++
		if !m.sizeLocked && float64(m.length)/float64(m.primary.bucketCount()) > m.loadFactor {
			m.beginResize()
		}
	}
	return nil
}

// Delete removes k, trying primary then secondary while in TRANSFER per
// spec.md §4.4's delete order.
func (m *Map[K, V]) Delete(k K) bool {
	if m.state == StateError {
		return false
	}
	m.migrateStep(migrateQuota)
	h := m.hashFn(k)
	if _, ok := m.primary.delete(h, k); ok {
		m.length--
		return true
	}
	if m.state == StateTransfer {
		if _, ok := m.secondary.delete(h, k); ok {
			m.length--
			return true
		}
	}
	return false
}

// DeleteAllKeys drops every key and returns the table to STABLE at its
// current primary bucket count.
func (m *Map[K, V]) DeleteAllKeys() {
	n := m.primary.bucketCount()
	m.primary = newBucketTable[K, V](m.alloc, n)
	m.secondary = nil
	m.state = StateStable
	m.length = 0
	m.migrateBucket = 0
}

// beginResize allocates secondary at the next table prime from P[i] >=
// 2^(current_fli+1) and switches to TRANSFER, per spec.md §4.4.
func (m *Map[K, V]) beginResize() {
	fl := fliOf(m.primary.bucketCount())
	target := uint64(1) << uint(fl+1)
	n, ok := NextPrimeCeil(target)
	if !ok {
		n = primeTable[len(primeTable)-1]
		if n <= m.primary.bucketCount() {
			return
		}
	}
	m.secondary = newBucketTable[K, V](m.alloc, n)
	m.state = StateTransfer
	m.migrateBucket = 0
}

// migrateStep migrates up to quota entries from primary's bucket tails
// into secondary, discarding any primary entry secondary already holds
// authoritatively. Flips to STABLE once primary is drained.
func (m *Map[K, V]) migrateStep(quota int) {
	if m.state != StateTransfer {
		return
	}
	migrated := 0
	for migrated < quota {
		for m.migrateBucket < len(m.primary.buckets) {
			b := m.primary.buckets[m.migrateBucket]
			if b != nil && !b.Empty() {
				break
			}
			m.migrateBucket++
		}
		if m.migrateBucket >= len(m.primary.buckets) {
			m.finishTransfer()
			return
		}
		b := m.primary.buckets[m.migrateBucket]
		e, ok := b.PopBack()
		if !ok {
			m.migrateBucket++
			continue
		}
		migrated++
		if !m.secondary.contains(e.hash, e.key) {
			if err := m.secondary.insert(e); err != nil {
				m.state = StateError
				return
			}
		}
	}
}

func (m *Map[K, V]) finishTransfer() {
	m.primary = m.secondary
	m.secondary = nil
	m.state = StateStable
	m.migrateBucket = 0
}

// Finalize completes any in-progress transfer in one pass, per spec.md
// §4.4's "used when the caller wants a predictable state."
func (m *Map[K, V]) Finalize() {
	for m.state == StateTransfer {
		m.migrateStep(migrateQuota)
	}
}

// Reserve forces a synchronous (non-amortized) upgrade to the next table
// prime large enough to hold buckets, per spec.md §4.4.
func (m *Map[K, V]) Reserve(buckets int) error {
	if m.state == StateError {
		return ErrTableError
	}
	target, ok := NextPrimeCeil(uint64(buckets))
	if !ok {
		target = primeTable[len(primeTable)-1]
	}
	cur := m.primary.bucketCount()
	if m.state == StateTransfer && m.secondary.bucketCount() > cur {
		cur = m.secondary.bucketCount()
	}
	if target <= cur {
		return nil
	}

	fresh := newBucketTable[K, V](m.alloc, target)
	migrateInto := func(t *bucketTable[K, V], onlyIfAbsent bool) error {
		for _, b := range t.buckets {
			if b == nil {
				continue
			}
			for i := 0; i < b.Len(); i++ {
				e := *b.Index(i)
				if onlyIfAbsent && fresh.contains(e.hash, e.key) {
					continue
				}
				if err := fresh.insert(e); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if m.state == StateTransfer {
		if err := migrateInto(m.secondary, false); err != nil {
			m.state = StateError
			return err
		}
		if err := migrateInto(m.primary, true); err != nil {
			m.state = StateError
			return err
		}
	} else if err := migrateInto(m.primary, false); err != nil {
		m.state = StateError
		return err
	}

	m.primary = fresh
	m.secondary = nil
	m.state = StateStable
	m.migrateBucket = 0
	return nil
}
