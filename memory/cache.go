package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Cache is a read-through view of a Store. It indexes every key at Bootstrap
// and loads content on demand; Get never performs I/O. Safe for concurrent use.
type Cache struct {
	store Store
	cache map[string][]byte
	index map[string]bool
	mu    sync.RWMutex
}

// NewCache creates a Cache backed by store.
func NewCache(store Store) *Cache {
	return &Cache{
		store: store,
		cache: make(map[string][]byte),
		index: make(map[string]bool),
	}
}

// Bootstrap indexes all keys and eagerly loads those under any of prefixes.
func (c *Cache) Bootstrap(ctx context.Context, prefixes ...string) error {
	keys, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap index: %w", err)
	}

	c.mu.Lock()
	for _, key := range keys {
		c.index[key] = true
	}
	c.mu.Unlock()

	var toLoad []string
	for _, key := range keys {
		if slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(key, p) }) {
			toLoad = append(toLoad, key)
		}
	}
	if len(toLoad) == 0 {
		return nil
	}

	return c.load(ctx, toLoad, "bootstrap load")
}

// Resolve loads keys that are not cached yet.
func (c *Cache) Resolve(ctx context.Context, keys ...string) error {
	c.mu.RLock()
	var toLoad []string
	for _, key := range keys {
		if _, cached := c.cache[key]; !cached {
			toLoad = append(toLoad, key)
		}
	}
	c.mu.RUnlock()

	if len(toLoad) == 0 {
		return nil
	}
	return c.load(ctx, toLoad, "resolve")
}

func (c *Cache) load(ctx context.Context, keys []string, op string) error {
	entries, err := c.store.Load(ctx, keys...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	for _, e := range entries {
		c.cache[e.Key] = e.Value
		c.index[e.Key] = true
	}
	c.mu.Unlock()
	return nil
}

// Get returns a copy of the cached value.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(val), true
}

func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index[key]
}

// Keys returns every indexed key, sorted.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.index))
	for key := range c.index {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Entries returns the cached entries under prefix, sorted by key. Indexed but
// unloaded keys are not included.
func (c *Cache) Entries(prefix string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var entries []Entry
	for key, val := range c.cache {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, Entry{Key: key, Value: slices.Clone(val)})
		}
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return entries
}
