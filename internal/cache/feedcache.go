package cache

import (
	"sync"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// DefaultFeedTTL is the freshness window for the cached main feed.
const DefaultFeedTTL = 10 * time.Second

// FeedCache is a single time-boxed slot holding the assembled first page of
// the main feed. It is deliberately not a keyed cache: only the default,
// unparameterized main-feed request is ever cached. Reads within the TTL
// window return the previous snapshot even if posts were created in the
// interim; Clear makes writes visible immediately.
type FeedCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	snapshot  models.Page[models.Post]
	expiresAt time.Time
	valid     bool
}

// NewFeedCache returns an empty cache slot with the given TTL.
// A non-positive TTL disables caching entirely.
func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot if the slot is filled and fresh.
func (c *FeedCache) Get() (models.Page[models.Post], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || c.now().After(c.expiresAt) {
		c.valid = false
		middleware.FeedCacheResults.WithLabelValues("miss").Inc()
		return models.Page[models.Post]{}, false
	}
	middleware.FeedCacheResults.WithLabelValues("hit").Inc()
	return c.snapshot, true
}

// Set fills the slot with a fresh snapshot.
func (c *FeedCache) Set(page models.Page[models.Post]) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = page
	c.expiresAt = c.now().Add(c.ttl)
	c.valid = true
}

// Clear invalidates the slot immediately. Clearing an empty slot is a no-op,
// never an error.
func (c *FeedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// SetClock overrides the cache's time source. Test hook.
func (c *FeedCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
