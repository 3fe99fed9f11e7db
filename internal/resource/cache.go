// Package resource layers a query cache over the API services. Reads are
// served from cache when fresh; every mutation invalidates the affected keys
// so the next read refetches. Cached copies are never authoritative.
package resource

import (
	"strings"
	"sync"
)

// cache holds fetched collections and entities keyed by query identity
// (entity type + filter parameters).
type cache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newCache() *cache {
	return &cache{entries: map[string]any{}}
}

func (c *cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *cache) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *cache) drop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// dropPrefix invalidates every key under a namespace, e.g. all project list
// variants regardless of filter.
func (c *cache) dropPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]any{}
}
