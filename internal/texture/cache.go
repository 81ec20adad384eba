package texture

import (
	"image"
	"sync"
)

// Cache is a concurrency-safe texture cache keyed by file path. Several
// entitlements often share one storefront texture.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	load  func(string) (*image.NRGBA, error)
}

type cacheEntry struct {
	once sync.Once
	img  *image.NRGBA
	err  error
}

// NewCache creates an empty cache that decodes with LoadTexture.
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		load:  LoadTexture,
	}
}

// Load returns the decoded texture at path, decoding it at most once.
// Decode errors are cached too.
func (c *Cache) Load(path string) (*image.NRGBA, error) {
	// Fast path: read lock
	c.mu.RLock()
	entry, exists := c.items[path]
	c.mu.RUnlock()

	if !exists {
		c.mu.Lock()
		if entry, exists = c.items[path]; !exists {
			entry = &cacheEntry{}
			c.items[path] = entry
		}
		c.mu.Unlock()
	}

	entry.once.Do(func() {
		entry.img, entry.err = c.load(path)
	})
	return entry.img, entry.err
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
