package filters

import (
	"image"
	"sync"
)

// Cache remembers the last filtered image so a renderer ticking many times
// per second only refilters when the source or the settings change.
type Cache struct {
	mu     sync.Mutex
	key    string
	src    image.Image
	f      Filters
	result image.Image
}

// Get returns src filtered by f. key identifies src; a change of key or
// settings invalidates the cached result.
func (c *Cache) Get(key string, src image.Image, f Filters) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil && c.key == key && c.src == src && c.f == f {
		return c.result
	}
	c.key, c.src, c.f = key, src, f
	c.result = f.Apply(src)
	return c.result
}
