package compiler

import (
	"sync"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
)

// Cache holds evaluated artifacts keyed by filename and hydratable flag.
// Entries are never evicted individually.
type Cache struct {
	mu      sync.RWMutex
	entries map[domain.CacheKey]ports.Artifact
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[domain.CacheKey]ports.Artifact)}
}

// Get returns the artifact stored under key.
func (c *Cache) Get(key domain.CacheKey) (ports.Artifact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.entries[key]
	return a, ok
}

// Put stores artifact under key, replacing any previous entry.
func (c *Cache) Put(key domain.CacheKey, artifact ports.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = artifact
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[domain.CacheKey]ports.Artifact)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
