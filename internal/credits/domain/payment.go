package credits

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a payment transaction.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Settled reports whether the payment amount was actually applied to the
// credit. Only settled payments count toward installment completion.
func (s PaymentStatus) Settled() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusPartial
}

// NormalizePaymentStatus validates and normalizes a payment status string.
func NormalizePaymentStatus(value string) (PaymentStatus, bool) {
	switch PaymentStatus(value) {
	case PaymentStatusCompleted, PaymentStatusPartial, PaymentStatusPending,
		PaymentStatusCancelled, PaymentStatusFailed:
		return PaymentStatus(value), true
	default:
		return "", false
	}
}

// Payment is one recorded transaction against a credit. A single installment
// slot may receive multiple partial payments sharing the same
// InstallmentNumber. Payments are append-only from the engine's view.
type Payment struct {
	ID                string
	CreditID          string
	TenantID          string
	CollectorID       string
	Amount            decimal.Decimal
	InstallmentNumber int
	PaymentDate       time.Time
	Status            PaymentStatus
	Notes             string
	CreatedAt         time.Time
}
