package diff

import (
	"sync"
	"time"
)

// generatedStatusTTL is how long a generated-status result stays valid.
const generatedStatusTTL = 60 * time.Second

// statusCache is a TTL cache for GeneratedStatus keyed by (ref, path).
// It is a plain map with no ordering guarantees and may be cleared
// wholesale on invalidation.
type statusCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]statusEntry
}

type statusEntry struct {
	status  GeneratedStatus
	expires time.Time
}

func newStatusCache(ttl time.Duration) *statusCache {
	return &statusCache{
		ttl:     ttl,
		entries: make(map[string]statusEntry),
	}
}

// get returns the cached status and whether it is still valid.
func (c *statusCache) get(key string) (GeneratedStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return GeneratedStatus{}, false
	}
	if time.Now().After(entry.expires) {
		delete(c.entries, key)
		return GeneratedStatus{}, false
	}
	return entry.status, true
}

func (c *statusCache) put(key string, status GeneratedStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = statusEntry{
		status:  status,
		expires: time.Now().Add(c.ttl),
	}
}

// clear drops all entries.
func (c *statusCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]statusEntry)
}
