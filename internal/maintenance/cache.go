package maintenance

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache keeps the maintenance switch in memory so the middleware does not hit
// the database on every request. A stale entry is refreshed on read; when the
// refresh fails the last known value is served, and with nothing cached the
// store fails open.
type Cache struct {
	repo   Repository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	settings  Settings
	fetchedAt time.Time
	loaded    bool
}

func NewCache(repo Repository, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{repo: repo, ttl: ttl, logger: logger, now: time.Now}
}

// Current returns the effective settings, refreshing when the cached entry is
// older than the TTL.
func (c *Cache) Current() Settings {
	c.mu.RLock()
	fresh := c.loaded && c.now().Sub(c.fetchedAt) < c.ttl
	s := c.settings
	c.mu.RUnlock()
	if fresh {
		return s
	}

	loaded, err := c.repo.Get()
	if err != nil {
		c.logger.Warn("maintenance settings refresh failed", zap.Error(err))
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.loaded {
			return c.settings
		}
		return Settings{}
	}

	c.mu.Lock()
	c.settings = loaded
	c.fetchedAt = c.now()
	c.loaded = true
	c.mu.Unlock()
	return loaded
}

// Invalidate drops the cached entry so the next read hits the store. Called
// after an admin flips the switch.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
