package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is the commercial tier of a tenant subscription.
type Plan string

const (
	PlanBasic    Plan = "basic"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// NormalizePlan validates and normalizes a plan string.
func NormalizePlan(value string) (Plan, bool) {
	switch Plan(value) {
	case PlanBasic, PlanStandard, PlanPremium:
		return Plan(value), true
	default:
		return "", false
	}
}

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// ErrSubscriptionNotFound indicates no subscription exists for a tenant.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// Subscription binds a tenant to a plan and billing period.
type Subscription struct {
	ID           string
	TenantID     string
	Plan         Plan
	Status       Status
	MonthlyPrice decimal.Decimal
	PeriodStart  time.Time
	PeriodEnd    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Billable reports whether the subscription should be invoiced for the
// current period.
func (s *Subscription) Billable() bool {
	if s == nil {
		return false
	}
	return s.Status == StatusActive || s.Status == StatusTrial
}
