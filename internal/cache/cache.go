// Package cache keeps rendered pages in memory for the dev server. Entries
// record the files they were built from so a file change can evict them.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// Cache is a size-bounded LRU of rendered artifacts
type Cache struct {
	mu      sync.Mutex
	maxSize int64
	size    int64
	entries map[string]*list.Element
	lru     *list.List
	stats   Stats
}

type entry struct {
	key  string
	data []byte
	deps []string
}

// Stats tracks cache performance
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	TotalSize  int64
	EntryCount int
}

// Config holds cache configuration
type Config struct {
	MaxSize int64 // Maximum cache size in bytes (default: 64 MB)
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{MaxSize: 64 << 20}
}

// New creates a new cache instance
func New(config Config) *Cache {
	if config.MaxSize <= 0 {
		config = DefaultConfig()
	}
	return &Cache{
		maxSize: config.MaxSize,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves a cached artifact
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.lru.MoveToFront(el)
	c.stats.Hits++
	return el.Value.(*entry).data, true
}

// Put stores an artifact
func (c *Cache) Put(key string, data []byte) {
	c.PutWithDeps(key, data, nil)
}

// PutWithDeps stores an artifact built from the files in deps. An artifact
// larger than the whole cache is not stored.
func (c *Cache) PutWithDeps(key string, data []byte, deps []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(data))
	if size > c.maxSize {
		return
	}
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	for c.size+size > c.maxSize {
		c.remove(c.lru.Back())
		c.stats.Evictions++
	}
	c.entries[key] = c.lru.PushFront(&entry{key: key, data: data, deps: deps})
	c.size += size
}

// Delete removes an entry from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
}

// InvalidateByDependency removes entries built from dep, or from any file
// under dep when it names a directory
func (c *Cache) InvalidateByDependency(dep string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, el := range c.entries {
		for _, d := range el.Value.(*entry).deps {
			if d == dep || strings.HasPrefix(d, strings.TrimSuffix(dep, "/")+"/") {
				c.remove(el)
				count++
				break
			}
		}
	}
	return count
}

// Clear removes all cached entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.size = 0
}

// GetStats returns cache statistics
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.TotalSize = c.size
	s.EntryCount = len(c.entries)
	return s
}

func (c *Cache) remove(el *list.Element) {
	e := c.lru.Remove(el).(*entry)
	delete(c.entries, e.key)
	c.size -= int64(len(e.data))
}

// Key generates a cache key from inputs
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write([]byte(input))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
