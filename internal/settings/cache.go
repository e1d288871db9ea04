package settings

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fetches one key from the store. found is false when no row exists.
type Loader func(ctx context.Context, key string) (value string, found bool, err error)

type cached struct {
	value string
	found bool
}

// Cache memoizes settings for the whole process. Concurrent misses on the same key share one
// load, and a load that races an invalidation is not stored.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]cached
	generation uint64
	group      singleflight.Group
	load       Loader
}

func NewCache(load Loader) *Cache {
	return &Cache{
		entries: make(map[string]cached),
		load:    load,
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	gen := c.generation
	c.mu.RUnlock()
	if ok {
		return e.value, e.found, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, found, err := c.load(ctx, key)
		if err != nil {
			return nil, err
		}
		loaded := cached{value: value, found: found}

		c.mu.Lock()
		if c.generation == gen {
			c.entries[key] = loaded
		}
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return "", false, err
	}
	loaded := v.(cached)
	return loaded.value, loaded.found, nil
}

func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	for _, k := range keys {
		delete(c.entries, k)
		c.group.Forget(k)
	}
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	for k := range c.entries {
		c.group.Forget(k)
	}
	c.entries = make(map[string]cached)
}

// Len reports the number of memoized keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
