package suggest

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"
)

// Cache sits in front of a Converter and remembers non-empty answers for a
// while. Empty answers are never stored, so a backend outage is retried on
// the next keystroke instead of being pinned for the whole TTL.
type Cache struct {
	next       Converter
	items      *gocache.Cache
	maxEntries int
	hits       int64
	misses     int64
	mu         sync.Mutex
}

// NewCache wraps next. With ttl <= 0 caching is off and next is returned as is.
// maxEntries <= 0 means unbounded.
func NewCache(next Converter, ttl time.Duration, maxEntries int) Converter {
	if ttl <= 0 {
		return next
	}
	return &Cache{
		next:       next,
		items:      gocache.New(ttl, 2*ttl),
		maxEntries: maxEntries,
	}
}

// Convert serves from the cache when possible and falls through to the wrapped Converter otherwise.
func (c *Cache) Convert(ctx context.Context, text string, limit int) []string {
	key := text + "|" + strconv.Itoa(limit)
	if v, ok := c.items.Get(key); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return append([]string(nil), v.([]string)...)
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()

	out := c.next.Convert(ctx, text, limit)
	if len(out) == 0 {
		return out
	}
	if c.maxEntries > 0 && c.items.ItemCount() >= c.maxEntries {
		c.evict()
	}
	c.items.SetDefault(key, append([]string(nil), out...))
	return out
}

// Stats reports cache counters.
func (c *Cache) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]int{
		"cacheEntries": c.items.ItemCount(),
		"maxEntries":   c.maxEntries,
		"cacheHits":    int(c.hits),
		"cacheMisses":  int(c.misses),
	}
}

// Flush drops every cached answer.
func (c *Cache) Flush() {
	c.items.Flush()
}

// evict removes expired entries and, if still full, the entry closest to expiry.
func (c *Cache) evict() {
	c.items.DeleteExpired()
	if c.items.ItemCount() < c.maxEntries {
		return
	}
	var oldestKey string
	var oldest int64 = math.MaxInt64
	for k, it := range c.items.Items() {
		if it.Expiration < oldest {
			oldest = it.Expiration
			oldestKey = k
		}
	}
	if oldestKey != "" {
		c.items.Delete(oldestKey)
		log.Debugf("Evicted '%s' from suggestion cache", oldestKey)
	}
}
