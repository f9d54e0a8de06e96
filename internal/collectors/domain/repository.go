package collectors

import (
	"context"
	"time"
)

// CollectorRepository defines persistence for the cobrador registry.
type CollectorRepository interface {
	// Get fetches a collector by id, returning (nil, nil) when absent.
	Get(ctx context.Context, id string) (*Collector, error)
	// ListByTenant lists tenant collectors, optionally active ones only.
	ListByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]Collector, error)
	// Create inserts a collector.
	Create(ctx context.Context, collector *Collector) error
	// SetActive toggles a collector's active flag.
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
}
