package catalog

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/sifan077/LinkShelf/internal/app/model"
	"go.uber.org/zap"
)

const (
	DefaultCacheTTL        = 60 * time.Second
	DefaultCacheMaxEntries = 100
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	TTL        time.Duration
	MaxEntries int
	Disabled   bool
	Now        func() time.Time
	Logger     *zap.Logger
}

type cacheEntry struct {
	key       string
	page      *model.CatalogPage
	expiresAt time.Time
}

// Cache is a bounded, TTL-based memo of catalog pages keyed by CacheKey.
// The list runs from least to most recently used; hits move an entry to the
// back and capacity eviction removes from the front.
//
// Cached pages are shared between callers and must not be mutated.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	disabled   bool
	now        func() time.Time
	logger     *zap.Logger

	entries    map[string]*list.Element
	order      *list.List
	generation uint64
}

// NewCache builds a cache, filling zero options with defaults.
func NewCache(opts CacheOptions) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultCacheMaxEntries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		disabled:   opts.Disabled,
		now:        opts.Now,
		logger:     opts.Logger,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Enabled reports whether the cache stores anything at all.
func (c *Cache) Enabled() bool {
	return !c.disabled
}

// Get returns the cached page for q, or false on miss.
func (c *Cache) Get(q Query) (*model.CatalogPage, bool) {
	if c.disabled {
		return nil, false
	}

	key := CacheKey(q)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.pruneLocked(now)

	el, ok := c.entries[key]
	if !ok {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if !now.Before(entry.expiresAt) {
		c.removeLocked(el, "expired")
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	c.order.MoveToBack(el)
	cacheLookups.WithLabelValues("hit").Inc()
	return entry.page, true
}

// Set stores page under q's key with a fresh TTL.
func (c *Cache) Set(q Query, page *model.CatalogPage) {
	if c.disabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(CacheKey(q), page)
}

// Generation identifies the current invalidation epoch. SetIfGeneration uses
// it to drop pages computed before an invalidation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetIfGeneration stores page only if no invalidation happened since gen was
// read. It reports whether the page was stored.
func (c *Cache) SetIfGeneration(q Query, page *model.CatalogPage, gen uint64) bool {
	if c.disabled {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.setLocked(CacheKey(q), page)
	return true
}

func (c *Cache) setLocked(key string, page *model.CatalogPage) {
	now := c.now()
	c.pruneLocked(now)

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el, "replaced")
	}
	if c.order.Len() >= c.maxEntries {
		if oldest := c.order.Front(); oldest != nil {
			c.removeLocked(oldest, "capacity")
		}
	}

	el := c.order.PushBack(&cacheEntry{
		key:       key,
		page:      page,
		expiresAt: now.Add(c.ttl),
	})
	c.entries[key] = el
}

// Invalidate drops every entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.order.Len()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.generation++
	if n > 0 {
		cacheRemovals.WithLabelValues("invalidate").Add(float64(n))
	}
}

// InvalidateCatalog implements Invalidator for the local process.
func (c *Cache) InvalidateCatalog(_ context.Context, reason string) {
	c.Invalidate()
	c.logger.Debug("catalog cache invalidated", zap.String("reason", reason))
}

// Prune removes expired entries and returns how many were dropped.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked(c.now())
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) pruneLocked(now time.Time) int {
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !now.Before(el.Value.(*cacheEntry).expiresAt) {
			c.removeLocked(el, "expired")
			removed++
		}
		el = next
	}
	return removed
}

func (c *Cache) removeLocked(el *list.Element, reason string) {
	entry := c.order.Remove(el).(*cacheEntry)
	delete(c.entries, entry.key)
	cacheRemovals.WithLabelValues(reason).Inc()
}
