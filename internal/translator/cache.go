package translator

import (
	"sync"
	"time"
)

// translationCache is a bounded TTL cache. When full, the entry closest
// to expiry is evicted.
type translationCache struct {
	items    map[string]cachedTranslation
	capacity int
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

type cachedTranslation struct {
	text     string
	expireAt time.Time
}

func newTranslationCache(capacity int, ttl time.Duration) *translationCache {
	return &translationCache{
		items:    make(map[string]cachedTranslation),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (c *translationCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || !c.now().Before(item.expireAt) {
		return "", false
	}
	return item.text, true
}

// put stores a translation and returns the new cache size.
func (c *translationCache) put(key, text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.capacity {
		c.evictLocked()
	}
	c.items[key] = cachedTranslation{text: text, expireAt: c.now().Add(c.ttl)}
	return len(c.items)
}

func (c *translationCache) evictLocked() {
	now := c.now()
	var oldestKey string
	var oldest time.Time
	for k, item := range c.items {
		if !now.Before(item.expireAt) {
			delete(c.items, k)
			continue
		}
		if oldestKey == "" || item.expireAt.Before(oldest) {
			oldestKey, oldest = k, item.expireAt
		}
	}
	if len(c.items) >= c.capacity && oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *translationCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
