// Package container provides small collection helpers used across the
// engine.
package container

// BoundedMap is a fixed-capacity map that evicts its oldest entry in
// O(1) when full. Insertion order is kept in a ring buffer indexed by
// arrival, so there is no per-access bookkeeping.
type BoundedMap[K comparable, V any] struct {
	capacity int
	items    map[K]V
	ring     []K
	head     int
	count    int
}

// NewBoundedMap creates a BoundedMap holding at most capacity entries.
// capacity must be positive.
func NewBoundedMap[K comparable, V any](capacity int) *BoundedMap[K, V] {
	if capacity <= 0 {
		panic("container: BoundedMap capacity must be positive")
	}
	return &BoundedMap[K, V]{
		capacity: capacity,
		items:    make(map[K]V, capacity),
		ring:     make([]K, capacity),
	}
}

// Put inserts or replaces the value for key. Inserting a new key when
// full evicts the oldest inserted key.
func (m *BoundedMap[K, V]) Put(key K, value V) {
	if _, ok := m.items[key]; ok {
		m.items[key] = value
		return
	}

	if m.count == m.capacity {
		oldest := m.ring[m.head]
		delete(m.items, oldest)
	} else {
		m.count++
	}

	m.ring[m.head] = key
	m.head = (m.head + 1) % m.capacity
	m.items[key] = value
}

// Get returns the value for key, if present.
func (m *BoundedMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Len returns the number of entries currently held.
func (m *BoundedMap[K, V]) Len() int {
	return len(m.items)
}
