package billing

import (
	"context"
	"time"
)

// SubscriptionRepository defines persistence capabilities for subscriptions.
type SubscriptionRepository interface {
	GetByTenant(ctx context.Context, tenantID string) (*Subscription, error)
	List(ctx context.Context) ([]Subscription, error)
	Create(ctx context.Context, sub *Subscription) error
	UpdateStatus(ctx context.Context, tenantID string, status Status, updatedAt time.Time) error
	UpdatePlan(ctx context.Context, tenantID string, plan Plan, updatedAt time.Time) error
}
