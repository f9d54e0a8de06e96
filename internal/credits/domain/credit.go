package credits

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency determines the length of one installment period.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
	FrequencyCustom   Frequency = "custom"
)

// NormalizeFrequency validates and normalizes a frequency string.
func NormalizeFrequency(value string) (Frequency, bool) {
	switch Frequency(value) {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return Frequency(value), true
	default:
		return "", false
	}
}

// Status represents the lifecycle state of a credit.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusWaitingDelivery Status = "waiting_delivery"
	StatusActive          Status = "active"
	StatusCompleted       Status = "completed"
	StatusDefaulted       Status = "defaulted"
	StatusCancelled       Status = "cancelled"
	StatusRejected        Status = "rejected"
	StatusOnHold          Status = "on_hold"
)

// NormalizeStatus validates and normalizes a credit status string.
func NormalizeStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPendingApproval, StatusWaitingDelivery, StatusActive, StatusCompleted,
		StatusDefaulted, StatusCancelled, StatusRejected, StatusOnHold:
		return Status(value), true
	default:
		return "", false
	}
}

// Credit represents a loan agreement between a tenant and a client.
// Balance is maintained by the payment-recording workflow and equals
// total_amount minus the sum of settled payment amounts.
type Credit struct {
	ID          string
	TenantID    string
	ClientID    string
	CollectorID string

	Amount      decimal.Decimal
	TotalAmount decimal.Decimal
	Balance     decimal.Decimal

	// InstallmentAmount and TotalInstallments may be unset on older records.
	InstallmentAmount *decimal.Decimal
	TotalInstallments *int

	// PaidInstallments is a denormalized counter of completed installments.
	// When present it is authoritative over derivation from payment history.
	PaidInstallments *int

	Frequency Frequency
	StartDate time.Time
	EndDate   time.Time
	Status    Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasInstallmentAmount reports whether a positive per-installment amount is set.
func (c *Credit) HasInstallmentAmount() bool {
	return c != nil && c.InstallmentAmount != nil && c.InstallmentAmount.IsPositive()
}

// IsOpen reports whether the credit is still being collected.
func (c *Credit) IsOpen() bool {
	if c == nil {
		return false
	}
	return c.Status == StatusActive || c.Status == StatusDefaulted || c.Status == StatusOnHold
}
