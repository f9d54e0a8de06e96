package credits

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CreditFilter narrows credit listings.
type CreditFilter struct {
	ClientID    string
	CollectorID string
	Status      Status
	// OpenOnly restricts to credits still being collected
	// (active, defaulted, on_hold).
	OpenOnly bool
}

// CreditRepository defines persistence capabilities for credits.
type CreditRepository interface {
	GetByID(ctx context.Context, id string) (*Credit, error)
	ListByTenant(ctx context.Context, tenantID string, filter CreditFilter) ([]Credit, error)
	Create(ctx context.Context, credit *Credit) error
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	ApplyPayment(ctx context.Context, id string, balance decimal.Decimal, paidInstallments *int, updatedAt time.Time) error
}

// PaymentRepository defines persistence capabilities for payments.
type PaymentRepository interface {
	ListByCredit(ctx context.Context, creditID string) ([]Payment, error)
	Create(ctx context.Context, payment *Payment) error
}
