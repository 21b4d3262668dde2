// Package lru provides a bounded least-recently-used map.
//
// A Cache is not safe for concurrent use; callers hold their own lock.
package lru

// node is an element of the recency list. It carries its key so the
// oldest entry can be dropped from the map in O(1).
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// Cache maps keys to values and drops the least recently used entry once
// it holds more than its capacity.
type Cache[K comparable, V any] struct {
	capacity int
	entries  map[K]*node[K, V]

	// head is the most recently used node, tail the least.
	head, tail *node[K, V]
}

// New returns an empty cache holding at most capacity entries. A capacity
// below one is treated as one.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: max(capacity, 1),
		entries:  make(map[K]*node[K, V]),
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Capacity returns the entry limit.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Get returns the value of key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	return n.value, true
}

// Put stores value under key, evicting the oldest entry if the cache is
// full.
func (c *Cache[K, V]) Put(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)
	if len(c.entries) > c.capacity {
		old := c.tail
		c.unlink(old)
		delete(c.entries, old.key)
	}
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	clear(c.entries)
	c.head, c.tail = nil, nil
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
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
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
