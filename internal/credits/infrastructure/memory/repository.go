package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	credits "collections-cloud/internal/credits/domain"
)

// CreditRepository is an in-memory repository for credits.
type CreditRepository struct {
	mu   sync.RWMutex
	data map[string]*credits.Credit
}

// NewCreditRepository constructs a repository.
func NewCreditRepository() *CreditRepository {
	return &CreditRepository{data: make(map[string]*credits.Credit)}
}

// GetByID fetches a credit.
func (r *CreditRepository) GetByID(ctx context.Context, id string) (*credits.Credit, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	credit, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	copied := *credit
	return &copied, nil
}

// ListByTenant lists tenant credits matching the filter.
func (r *CreditRepository) ListByTenant(ctx context.Context, tenantID string, filter credits.CreditFilter) ([]credits.Credit, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []credits.Credit
	for _, credit := range r.data {
		if credit.TenantID != tenantID {
			continue
		}
		if filter.ClientID != "" && credit.ClientID != filter.ClientID {
			continue
		}
		if filter.CollectorID != "" && credit.CollectorID != filter.CollectorID {
			continue
		}
		if filter.Status != "" && credit.Status != filter.Status {
			continue
		}
		if filter.OpenOnly && !credit.IsOpen() {
			continue
		}
		result = append(result, *credit)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Create inserts a credit.
func (r *CreditRepository) Create(ctx context.Context, credit *credits.Credit) error {
	_ = ctx
	if credit == nil {
		return credits.ErrNilCredit
	}
	copied := *credit
	r.mu.Lock()
	r.data[credit.ID] = &copied
	r.mu.Unlock()
	return nil
}

// UpdateStatus transitions a credit's status.
func (r *CreditRepository) UpdateStatus(ctx context.Context, id string, status credits.Status, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	credit, ok := r.data[id]
	if !ok {
		return credits.ErrCreditNotFound
	}
	credit.Status = status
	credit.UpdatedAt = updatedAt
	return nil
}

// ApplyPayment updates balance and the paid_installments counter.
func (r *CreditRepository) ApplyPayment(ctx context.Context, id string, balance decimal.Decimal, paidInstallments *int, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	credit, ok := r.data[id]
	if !ok {
		return credits.ErrCreditNotFound
	}
	credit.Balance = balance
	credit.PaidInstallments = paidInstallments
	credit.UpdatedAt = updatedAt
	return nil
}

// PaymentRepository is an in-memory repository for payments.
type PaymentRepository struct {
	mu   sync.RWMutex
	data map[string][]credits.Payment
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{data: make(map[string][]credits.Payment)}
}

// ListByCredit returns payments ordered by payment date.
func (r *PaymentRepository) ListByCredit(ctx context.Context, creditID string) ([]credits.Payment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	payments := make([]credits.Payment, len(r.data[creditID]))
	copy(payments, r.data[creditID])
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaymentDate.Before(payments[j].PaymentDate)
	})
	return payments, nil
}

// Create appends a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *credits.Payment) error {
	_ = ctx
	if payment == nil {
		return credits.ErrPaymentNotFound
	}
	r.mu.Lock()
	r.data[payment.CreditID] = append(r.data[payment.CreditID], *payment)
	r.mu.Unlock()
	return nil
}
