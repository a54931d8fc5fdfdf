package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatsCache caches computed dashboard figures per owner. A nil result
// with a nil error means the owner has no cached entry.
type StatsCache interface {
	// Get retrieves the cached stats for an owner, or nil on a miss.
	Get(ctx context.Context, ownerID uuid.UUID) (*DashboardStats, error)

	// Set stores the stats for an owner. A zero ttl uses the cache default.
	Set(ctx context.Context, ownerID uuid.UUID, stats DashboardStats, ttl time.Duration) error

	// Delete drops the cached entry for an owner.
	Delete(ctx context.Context, ownerID uuid.UUID) error

	// Close releases any resources held by the cache.
	Close() error
}

// StatsCacheConfig holds cache timing configuration.
type StatsCacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultStatsCacheConfig returns the default cache configuration.
// Stats tolerate short staleness; lifecycle events invalidate eagerly,
// so the TTL only bounds drift from writes that bypass the event bus.
func DefaultStatsCacheConfig() StatsCacheConfig {
	return StatsCacheConfig{
		TTL:             30 * time.Second,
		CleanupInterval: time.Minute,
	}
}
