package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	collectors "collections-cloud/internal/collectors/domain"
)

// CollectorRepository is an in-memory repository for collectors.
type CollectorRepository struct {
	mu   sync.RWMutex
	data map[string]*collectors.Collector
}

// NewCollectorRepository constructs a repository.
func NewCollectorRepository() *CollectorRepository {
	return &CollectorRepository{data: make(map[string]*collectors.Collector)}
}

// Get fetches a collector.
func (r *CollectorRepository) Get(ctx context.Context, id string) (*collectors.Collector, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	collector, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	copied := *collector
	return &copied, nil
}

// ListByTenant lists tenant collectors, optionally active ones only.
func (r *CollectorRepository) ListByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]collectors.Collector, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []collectors.Collector
	for _, collector := range r.data {
		if collector.TenantID != tenantID {
			continue
		}
		if activeOnly && !collector.Active {
			continue
		}
		result = append(result, *collector)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Create inserts a collector.
func (r *CollectorRepository) Create(ctx context.Context, collector *collectors.Collector) error {
	_ = ctx
	if collector == nil {
		return errors.New("collector repo: nil collector")
	}
	copied := *collector
	r.mu.Lock()
	r.data[collector.ID] = &copied
	r.mu.Unlock()
	return nil
}

// SetActive toggles a collector's active flag.
func (r *CollectorRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	collector, ok := r.data[id]
	if !ok {
		return collectors.ErrCollectorNotFound
	}
	collector.Active = active
	collector.UpdatedAt = updatedAt
	return nil
}
