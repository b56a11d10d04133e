package translate

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/leapstack-labs/portsql/pkg/params"
)

// entry is a cached translation. Entries are never modified after they are
// stored.
type entry struct {
	sql  string
	tmpl params.Template
}

// Stats represents cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// stmtCache is a bounded least-recently-used map from statement text to
// entry with hit, miss and eviction counters. A maxSize of zero disables
// caching.
type stmtCache struct {
	maxSize int
	lru     *lru.Cache[string, *entry] // nil when disabled

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func newStmtCache(maxSize int) (*stmtCache, error) {
	c := &stmtCache{maxSize: maxSize}
	if maxSize <= 0 {
		return c, nil
	}
	l, err := lru.NewWithEvict(maxSize, func(string, *entry) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// get looks key up and counts the hit or miss.
func (c *stmtCache) get(key string) (*entry, bool) {
	if c.lru != nil {
		if e, ok := c.lru.Get(key); ok {
			c.hits.Add(1)
			return e, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// peek looks key up without touching recency or counters. Callers inside
// the singleflight group use it to see a translation stored by the flight
// that just finished.
func (c *stmtCache) peek(key string) (*entry, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Peek(key)
}

func (c *stmtCache) set(key string, value *entry) {
	if c.lru != nil {
		c.lru.Add(key, value)
	}
}

func (c *stmtCache) clear() {
	if c.lru != nil {
		c.lru.Purge()
	}
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

func (c *stmtCache) snapshot() Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		MaxSize:   c.maxSize,
	}
	if c.lru != nil {
		s.Size = c.lru.Len()
	}
	return s
}
