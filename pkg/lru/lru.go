package lru

import (
	"fmt"
)

// LRU is a size-bounded map that evicts its least recently used entry.
// Both Add and Get count as a use. It is not safe for concurrent use.
type LRU[K comparable, V any] struct {
	maxSize int
	onEvict func(key K, v V)

	l recencyList[K, V]
	m map[K]*node[K, V]
}

// NewLRU returns an LRU holding at most maxSize entries. onEvict, if not
// nil, is called for every entry pushed out by the size bound.
func NewLRU[K comparable, V any](maxSize int, onEvict func(key K, v V)) *LRU[K, V] {
	if maxSize <= 0 {
		panic(fmt.Sprintf("LRU: invalid max size: %d", maxSize))
	}

	q := &LRU[K, V]{
		maxSize: maxSize,
		onEvict: onEvict,
		m:       make(map[K]*node[K, V], maxSize),
	}
	q.l.init()
	return q
}

// Add inserts or replaces the value under key and marks it most recently
// used.
func (q *LRU[K, V]) Add(key K, v V) {
	if n, ok := q.m[key]; ok {
		n.v = v
		q.l.moveToBack(n)
		return
	}

	// Full: recycle the oldest node for the new key.
	if q.l.length >= q.maxSize {
		n := q.l.front()
		oldKey, oldV := n.key, n.v
		delete(q.m, oldKey)

		n.key, n.v = key, v
		q.m[key] = n
		q.l.moveToBack(n)

		if q.onEvict != nil {
			q.onEvict(oldKey, oldV)
		}
		return
	}

	n := &node[K, V]{key: key, v: v}
	q.m[key] = n
	q.l.pushBack(n)
}

// Get returns the value under key and marks it most recently used.
func (q *LRU[K, V]) Get(key K) (v V, ok bool) {
	n, ok := q.m[key]
	if !ok {
		return
	}
	q.l.moveToBack(n)
	return n.v, true
}

// keys returns all keys from least to most recently used.
func (q *LRU[K, V]) keys() []K {
	keys := make([]K, 0, q.l.length)
	for n := q.l.front(); n != nil && n != &q.l.root; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (q *LRU[K, V]) Len() int {
	return q.l.length
}
