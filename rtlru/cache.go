// Package rtlru implements the LRU cache of spec.md §4.6, composed from
// rtpool (node storage) and rthash (key index) exactly as the spec
// prescribes: "Composed of §4.5 and §4.4."
//
// Grounded in original_source/librtlcpp/include/rtlcpp/lru.hpp's node-pool
// plus hash-map-of-node-pointers design, and in spec.md §9's note that "the
// present implementation already uses raw pointers" for the intrusive
// list rather than reference counting: eviction unlinks a node, drops it
// from the index, and returns it to the pool in one step.
package rtlru

import (
	"github.com/akiscode/real-time-library/rthash"
	"github.com/akiscode/real-time-library/rtpool"
)

// Allocator is the seam both the node pool and the key index draw storage
// from.
type Allocator = rtpool.Allocator

type node[K comparable, V any] struct {
	key        K
	val        V
	prev, next *node[K, V]
}

// Cache is a fixed-capacity LRU cache. At construction it reserves enough
// hash-table buckets for capacity and locks the table size so put/get stay
// in bounded time, per spec.md §4.6.
type Cache[K comparable, V any] struct {
	pool     *rtpool.Pool[node[K, V]]
	index    *rthash.Map[K, *node[K, V]]
	capacity int
	head     *node[K, V] // most recently used
	tail     *node[K, V] // least recently used
}

// New constructs a cache of the given capacity (clamped to at least 1).
func New[K comparable, V any](alloc Allocator, capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache[K, V]{
		pool:     rtpool.New[node[K, V]](alloc, capacity, 1),
		capacity: capacity,
	}
	c.index = rthash.New[K, *node[K, V]](alloc, rthash.WithInitialBuckets[K, *node[K, V]](uint64(capacity)))
	c.index.Reserve(capacity)
	c.index.LockSize(true)
	return c
}

func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *Cache[K, V]) evictTail() {
	t := c.tail
	if t == nil {
		return
	}
	c.unlink(t)
	c.index.Delete(t.key)
	c.pool.Put(t)
}

// Get copies k's value out and re-links its node at the head.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	n, ok := c.index.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	return n.val, true
}

// GetPtr returns an interior pointer to k's value, re-linking its node at
// the head. Per spec.md §4.6, the pointer is invalidated by any subsequent
// cache call (a later eviction may recycle the node it points into).
func (c *Cache[K, V]) GetPtr(k K) (*V, bool) {
	n, ok := c.index.Get(k)
	if !ok {
		return nil, false
	}
	c.moveToFront(n)
	return &n.val, true
}

// Contains reports whether k is present without affecting recency.
func (c *Cache[K, V]) Contains(k K) bool {
	return c.index.Contains(k)
}

// Put inserts or updates k -> v. An existing key is updated in place and
// re-linked to the head; a new key is inserted at the head, evicting the
// tail first if the cache is at capacity.
func (c *Cache[K, V]) Put(k K, v V) {
	if n, ok := c.index.Get(k); ok {
		n.val = v
		c.moveToFront(n)
		return
	}
	if c.index.Len() >= c.capacity {
		c.evictTail()
	}
	n := c.pool.Get(node[K, V]{key: k, val: v})
	c.pushFront(n)
	c.index.Put(k, n)
}

// Len reports the number of entries currently cached.
func (c *Cache[K, V]) Len() int { return c.index.Len() }

// Cap reports the cache's fixed capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Empty reports whether the cache holds no entries.
func (c *Cache[K, V]) Empty() bool { return c.index.Len() == 0 }

// Reset evicts every entry, returning all nodes to the pool.
func (c *Cache[K, V]) Reset() {
	for c.head != nil {
		n := c.head
		c.unlink(n)
		c.pool.Put(n)
	}
	c.tail = nil
	c.index.DeleteAllKeys()
}
