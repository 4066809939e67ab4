package concurrent_lru

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcurrentLRU_race(t *testing.T) {
	c := NewConcurrentLRU[string, int](128, nil)

	wg := sync.WaitGroup{}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 256; i++ {
				key := strconv.Itoa(g*256 + i)
				c.Add(key, i)
				_, _ = c.Get(key)
				_, _ = c.Get(strconv.Itoa(i))
				if n := c.Len(); n > 128 {
					t.Errorf("cache overflow: %d", n)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 128, c.Len())
}

func TestConcurrentLRU_evictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewConcurrentLRU[string, int](2, func(key string, _ int) {
		evicted = append(evicted, key)
	})
	c.Add("a", 1)
	c.Add("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Add("c", 3)
	require.Equal(t, []string{"b"}, evicted)
	_, ok = c.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, c.Len())
}
