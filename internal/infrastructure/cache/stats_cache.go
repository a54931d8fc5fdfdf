// Package cache provides in-memory caching for computed dashboard
// figures. Entries expire on a TTL and are invalidated eagerly when
// invoice lifecycle events change an owner's numbers.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// InMemoryStatsCache implements billing.StatsCache with process-local
// storage. Dashboard reads far outnumber invoice writes, so a short
// TTL plus event-driven invalidation keeps the figures fresh without
// re-running the aggregate queries on every request.
type InMemoryStatsCache struct {
	entries sync.Map // map[uuid.UUID]*statsEntry
	config  billing.StatsCacheConfig
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// statsEntry wraps a cached value with its expiration time
type statsEntry struct {
	stats     billing.DashboardStats
	expiresAt time.Time
}

func (e *statsEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryStatsCacheOption is a functional option for configuring the cache
type InMemoryStatsCacheOption func(*InMemoryStatsCache)

// WithStatsCacheConfig sets the cache timing configuration
func WithStatsCacheConfig(config billing.StatsCacheConfig) InMemoryStatsCacheOption {
	return func(c *InMemoryStatsCache) {
		c.config = config
	}
}

// WithStatsCacheLogger sets the logger for the cache
func WithStatsCacheLogger(logger *zap.Logger) InMemoryStatsCacheOption {
	return func(c *InMemoryStatsCache) {
		c.logger = logger
	}
}

// NewInMemoryStatsCache creates a new in-memory dashboard stats cache
func NewInMemoryStatsCache(opts ...InMemoryStatsCacheOption) *InMemoryStatsCache {
	cache := &InMemoryStatsCache{
		config: billing.DefaultStatsCacheConfig(),
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves the cached stats for an owner, or nil on a miss
func (c *InMemoryStatsCache) Get(_ context.Context, ownerID uuid.UUID) (*billing.DashboardStats, error) {
	if value, ok := c.entries.Load(ownerID); ok {
		entry := value.(*statsEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("Stats cache hit", zap.String("owner_id", ownerID.String()))
			stats := entry.stats
			return &stats, nil
		}
		c.entries.Delete(ownerID)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("Stats cache miss", zap.String("owner_id", ownerID.String()))
	return nil, nil
}

// Set stores the stats for an owner
func (c *InMemoryStatsCache) Set(_ context.Context, ownerID uuid.UUID, stats billing.DashboardStats, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.TTL
	}

	c.entries.Store(ownerID, &statsEntry{
		stats:     stats,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("Cached dashboard stats",
		zap.String("owner_id", ownerID.String()),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete drops the cached entry for an owner
func (c *InMemoryStatsCache) Delete(_ context.Context, ownerID uuid.UUID) error {
	c.entries.Delete(ownerID)
	c.logger.Debug("Invalidated dashboard stats", zap.String("owner_id", ownerID.String()))
	return nil
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *InMemoryStatsCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns hit and miss counters
func (c *InMemoryStatsCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of cached entries
func (c *InMemoryStatsCache) Count() int {
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryStatsCache) cleanupExpired() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryStatsCache) doCleanup() {
	var removed int
	c.entries.Range(func(key, value any) bool {
		entry := value.(*statsEntry)
		if entry.isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired stats cache entries", zap.Int("removed", removed))
	}
}

// Ensure InMemoryStatsCache implements StatsCache
var _ billing.StatsCache = (*InMemoryStatsCache)(nil)
