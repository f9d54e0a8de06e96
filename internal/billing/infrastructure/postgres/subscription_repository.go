package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	billing "collections-cloud/internal/billing/domain"
)

// SubscriptionRepository persists tenant subscriptions.
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository constructs a repository.
func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, tenant_id, plan, status, monthly_price, period_start, period_end, created_at, updated_at`

// GetByTenant fetches the subscription of a tenant.
func (r *SubscriptionRepository) GetByTenant(ctx context.Context, tenantID string) (*billing.Subscription, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("subscription repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
WHERE tenant_id = $1
LIMIT 1`, tenantID)
	return scanSubscription(row)
}

// List returns all subscriptions ordered by tenant.
func (r *SubscriptionRepository) List(ctx context.Context) ([]billing.Subscription, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("subscription repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
ORDER BY tenant_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			result = append(result, *sub)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *billing.Subscription) error {
	if r == nil || r.db == nil {
		return errors.New("subscription repo: nil db")
	}
	if sub == nil {
		return errors.New("subscription repo: nil subscription")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO subscriptions (
	id, tenant_id, plan, status, monthly_price, period_start, period_end, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		sub.ID, sub.TenantID, string(sub.Plan), string(sub.Status), sub.MonthlyPrice,
		sub.PeriodStart, sub.PeriodEnd, sub.CreatedAt, sub.UpdatedAt)
	return err
}

// UpdateStatus transitions a subscription's status.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, tenantID string, status billing.Status, updatedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("subscription repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE subscriptions
SET status = $1, updated_at = $2
WHERE tenant_id = $3`, string(status), updatedAt, tenantID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return billing.ErrSubscriptionNotFound
	}
	return nil
}

// UpdatePlan changes a subscription's plan.
func (r *SubscriptionRepository) UpdatePlan(ctx context.Context, tenantID string, plan billing.Plan, updatedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("subscription repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE subscriptions
SET plan = $1, updated_at = $2
WHERE tenant_id = $3`, string(plan), updatedAt, tenantID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return billing.ErrSubscriptionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*billing.Subscription, error) {
	var sub billing.Subscription
	var plan string
	var status string
	err := row.Scan(
		&sub.ID,
		&sub.TenantID,
		&plan,
		&status,
		&sub.MonthlyPrice,
		&sub.PeriodStart,
		&sub.PeriodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sub.Plan = billing.Plan(plan)
	sub.Status = billing.Status(status)
	sub.PeriodStart = sub.PeriodStart.UTC()
	sub.PeriodEnd = sub.PeriodEnd.UTC()
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return &sub, nil
}
