package mem_cache

import (
	"go.uber.org/zap"

	"github.com/bseib/MXResolver/pkg/cache"
	"github.com/bseib/MXResolver/pkg/clock"
	"github.com/bseib/MXResolver/pkg/concurrent_lru"
)

var nopLogger = zap.NewNop()

var _ cache.Backend = (*MemCache)(nil)

// MemCache is an in-process cache.Backend bounded to a fixed number of
// entries. Entries are never removed for age; stale ones stay until they
// are overwritten or evicted.
type MemCache struct {
	clock  clock.Clock
	logger *zap.Logger
	lru    *concurrent_lru.ConcurrentLRU[string, *cache.Entry]
}

// NewMemCache returns a MemCache holding at most size entries. A nil clk
// means clock.System, a nil logger disables logging.
func NewMemCache(size int, clk clock.Clock, logger *zap.Logger) *MemCache {
	if clk == nil {
		clk = clock.System
	}
	if logger == nil {
		logger = nopLogger
	}
	c := &MemCache{
		clock:  clk,
		logger: logger,
	}
	c.lru = concurrent_lru.NewConcurrentLRU[string, *cache.Entry](size, c.onEvict)
	return c
}

func (c *MemCache) onEvict(key string, e *cache.Entry) {
	c.logger.Debug("dropping least recently used cache entry",
		zap.String("key", key),
		zap.Time("created", e.Created))
}

// Get returns the entry under key whether or not it is stale. The
// returned Entry must not be modified.
func (c *MemCache) Get(key string) (*cache.Entry, bool) {
	return c.lru.Get(key)
}

// Store copies hosts into a new entry stamped with the current time.
func (c *MemCache) Store(key string, hosts []string) {
	if len(hosts) == 0 {
		return
	}

	// The caller keeps ownership of hosts.
	buf := make([]string, len(hosts))
	copy(buf, hosts)

	c.lru.Add(key, &cache.Entry{
		Hosts:   buf,
		Created: c.clock.Now(),
	})
}

func (c *MemCache) Len() int {
	return c.lru.Len()
}
