package match

import "sync"

// resultCache is the in-process match cache. Entries never expire here;
// process lifetime is the bound, with the persistent store handling
// longer-lived reuse.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[string]Result)}
}

func (c *resultCache) get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[key]
	return res, ok
}

func (c *resultCache) set(key string, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = res
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Result)
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
