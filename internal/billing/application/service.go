package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billing "collections-cloud/internal/billing/domain"
	"collections-cloud/internal/observability/metrics"
)

// BillingService manages tenant subscriptions. All operations are reserved
// for the platform operator; role enforcement happens in the HTTP layer.
type BillingService struct {
	subs  billing.SubscriptionRepository
	clock func() time.Time
}

// NewBillingService constructs a service.
func NewBillingService(subs billing.SubscriptionRepository, clock func() time.Time) (*BillingService, error) {
	if subs == nil {
		return nil, errors.New("billing service: nil subscription repo")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &BillingService{subs: subs, clock: clock}, nil
}

// CreateInput carries subscription onboarding fields.
type CreateInput struct {
	TenantID     string
	Plan         string
	MonthlyPrice decimal.Decimal
	Trial        bool
}

// Create onboards a tenant subscription.
func (s *BillingService) Create(ctx context.Context, input CreateInput) (*billing.Subscription, error) {
	if input.TenantID == "" {
		return nil, errors.New("billing service: tenant_id required")
	}
	plan, ok := billing.NormalizePlan(input.Plan)
	if !ok {
		return nil, errors.New("billing service: invalid plan")
	}
	if input.MonthlyPrice.IsNegative() {
		return nil, errors.New("billing service: negative monthly price")
	}
	existing, err := s.subs.GetByTenant(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("billing service: tenant already subscribed")
	}

	now := s.clock()
	status := billing.StatusActive
	if input.Trial {
		status = billing.StatusTrial
	}
	sub := &billing.Subscription{
		ID:           "sub-" + uuid.NewString(),
		TenantID:     input.TenantID,
		Plan:         plan,
		Status:       status,
		MonthlyPrice: input.MonthlyPrice,
		PeriodStart:  now,
		PeriodEnd:    now.AddDate(0, 1, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	metrics.IncBillingOp("create")
	return sub, nil
}

// List returns all tenant subscriptions.
func (s *BillingService) List(ctx context.Context) ([]billing.Subscription, error) {
	return s.subs.List(ctx)
}

// Get returns the subscription of a tenant.
func (s *BillingService) Get(ctx context.Context, tenantID string) (*billing.Subscription, error) {
	sub, err := s.subs.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, billing.ErrSubscriptionNotFound
	}
	return sub, nil
}

// Suspend pauses a tenant's subscription, blocking renewals.
func (s *BillingService) Suspend(ctx context.Context, tenantID string) (*billing.Subscription, error) {
	if err := s.subs.UpdateStatus(ctx, tenantID, billing.StatusSuspended, s.clock()); err != nil {
		return nil, err
	}
	metrics.IncBillingOp("suspend")
	return s.Get(ctx, tenantID)
}

// Reactivate resumes a suspended subscription.
func (s *BillingService) Reactivate(ctx context.Context, tenantID string) (*billing.Subscription, error) {
	sub, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub.Status == billing.StatusCancelled {
		return nil, errors.New("billing service: cancelled subscription cannot be reactivated")
	}
	if err := s.subs.UpdateStatus(ctx, tenantID, billing.StatusActive, s.clock()); err != nil {
		return nil, err
	}
	metrics.IncBillingOp("reactivate")
	return s.Get(ctx, tenantID)
}

// Cancel terminates a subscription permanently.
func (s *BillingService) Cancel(ctx context.Context, tenantID string) (*billing.Subscription, error) {
	if err := s.subs.UpdateStatus(ctx, tenantID, billing.StatusCancelled, s.clock()); err != nil {
		return nil, err
	}
	metrics.IncBillingOp("cancel")
	return s.Get(ctx, tenantID)
}

// ChangePlan moves a tenant to a different plan.
func (s *BillingService) ChangePlan(ctx context.Context, tenantID, plan string) (*billing.Subscription, error) {
	normalized, ok := billing.NormalizePlan(plan)
	if !ok {
		return nil, errors.New("billing service: invalid plan")
	}
	if err := s.subs.UpdatePlan(ctx, tenantID, normalized, s.clock()); err != nil {
		return nil, err
	}
	metrics.IncBillingOp("change_plan")
	return s.Get(ctx, tenantID)
}
