package concurrent_lru

import (
	"sync"

	"github.com/bseib/MXResolver/pkg/lru"
)

// ConcurrentLRU serialises every operation on an lru.LRU with one mutex.
// Get reorders the list, so reads take the same lock as writes.
// Eviction always picks the globally least recently used entry, so the
// map is not sharded.
type ConcurrentLRU[K comparable, V any] struct {
	mu  sync.Mutex
	lru *lru.LRU[K, V]
}

// NewConcurrentLRU returns a ConcurrentLRU. onEvict runs with the lock
// held and must not call back into the ConcurrentLRU.
func NewConcurrentLRU[K comparable, V any](
	maxSize int,
	onEvict func(key K, v V),
) *ConcurrentLRU[K, V] {
	return &ConcurrentLRU[K, V]{
		lru: lru.NewLRU[K, V](maxSize, onEvict),
	}
}

func (c *ConcurrentLRU[K, V]) Add(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, v)
}

func (c *ConcurrentLRU[K, V]) Get(key K) (v V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

func (c *ConcurrentLRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
