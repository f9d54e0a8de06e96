package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	billing "collections-cloud/internal/billing/domain"
)

// SubscriptionRepository is an in-memory repository for subscriptions.
type SubscriptionRepository struct {
	mu   sync.RWMutex
	data map[string]*billing.Subscription
}

// NewSubscriptionRepository constructs a repository.
func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{data: make(map[string]*billing.Subscription)}
}

// GetByTenant fetches the subscription of a tenant.
func (r *SubscriptionRepository) GetByTenant(ctx context.Context, tenantID string) (*billing.Subscription, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.data[tenantID]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

// List returns all subscriptions ordered by tenant.
func (r *SubscriptionRepository) List(ctx context.Context) ([]billing.Subscription, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]billing.Subscription, 0, len(r.data))
	for _, sub := range r.data {
		result = append(result, *sub)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TenantID < result[j].TenantID })
	return result, nil
}

// Create inserts a subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *billing.Subscription) error {
	_ = ctx
	if sub == nil {
		return errors.New("subscription repo: nil subscription")
	}
	copied := *sub
	r.mu.Lock()
	r.data[sub.TenantID] = &copied
	r.mu.Unlock()
	return nil
}

// UpdateStatus transitions a subscription's status.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, tenantID string, status billing.Status, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.data[tenantID]
	if !ok {
		return billing.ErrSubscriptionNotFound
	}
	sub.Status = status
	sub.UpdatedAt = updatedAt
	return nil
}

// UpdatePlan changes a subscription's plan.
func (r *SubscriptionRepository) UpdatePlan(ctx context.Context, tenantID string, plan billing.Plan, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.data[tenantID]
	if !ok {
		return billing.ErrSubscriptionNotFound
	}
	sub.Plan = plan
	sub.UpdatedAt = updatedAt
	return nil
}
