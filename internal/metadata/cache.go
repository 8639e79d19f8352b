package metadata

import "sync"

// Cache holds normalized records for the process lifetime: one map for the
// managed YouTube family keyed by video id, and per-domain maps for the
// generic extraction family keyed by display id. Entries are immutable once
// stored and never evicted; construct one per process and inject it into the
// Fetcher.
type Cache struct {
	mu      sync.RWMutex
	youtube map[string]*Record
	generic map[string]map[string]*Record
}

func NewCache() *Cache {
	return &Cache{
		youtube: make(map[string]*Record),
		generic: make(map[string]map[string]*Record),
	}
}

func (c *Cache) GetYouTube(id string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.youtube[id]
	return r, ok
}

func (c *Cache) PutYouTube(id string, r *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.youtube[id]; ok {
		// First write wins; cached records are immutable.
		return
	}
	c.youtube[id] = r
}

func (c *Cache) GetGeneric(domain, id string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.generic[domain][id]
	return r, ok
}

func (c *Cache) PutGeneric(domain, id string, r *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID, ok := c.generic[domain]
	if !ok {
		byID = make(map[string]*Record)
		c.generic[domain] = byID
	}
	if _, ok := byID[id]; ok {
		return
	}
	byID[id] = r
}

// Len reports the total number of cached records, for logging.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := len(c.youtube)
	for _, byID := range c.generic {
		n += len(byID)
	}
	return n
}
