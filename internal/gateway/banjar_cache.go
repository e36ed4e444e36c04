package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// BanjarCache caches the banjar lookup dimension. The list changes rarely but
// is fetched by both the registration form and the resident management page,
// so a short TTL cache with request collapsing keeps the billing API quiet.
type BanjarCache struct {
	mu        sync.RWMutex
	entries   []domain.Banjar
	expiresAt time.Time

	ttl   time.Duration
	clock clockwork.Clock
	group singleflight.Group
	fetch func(ctx context.Context) ([]domain.Banjar, error)
}

// NewBanjarCache wraps fetch (typically Client.Banjars) with a TTL cache.
func NewBanjarCache(fetch func(ctx context.Context) ([]domain.Banjar, error), ttl time.Duration, clock clockwork.Clock) *BanjarCache {
	return &BanjarCache{
		ttl:   ttl,
		clock: clock,
		fetch: fetch,
	}
}

// Get returns the cached banjar list, fetching it when absent or expired.
// Concurrent misses share a single upstream request.
func (c *BanjarCache) Get(ctx context.Context) ([]domain.Banjar, error) {
	c.mu.RLock()
	if c.entries != nil && c.clock.Now().Before(c.expiresAt) {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do("banjar", func() (any, error) {
		entries, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries = entries
		c.expiresAt = c.clock.Now().Add(c.ttl)
		c.mu.Unlock()

		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Banjar), nil
}

// Invalidate drops the cached list, forcing the next Get to refetch.
func (c *BanjarCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}
