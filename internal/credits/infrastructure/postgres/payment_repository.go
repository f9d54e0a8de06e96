package postgres

import (
	"context"
	"database/sql"
	"errors"

	credits "collections-cloud/internal/credits/domain"
)

// PaymentRepository persists payments.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListByCredit returns all payments for a credit ordered by payment date.
// Grouping downstream is order-independent; the deterministic order aids
// testing and report rendering.
func (r *PaymentRepository) ListByCredit(ctx context.Context, creditID string) ([]credits.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, credit_id, tenant_id, collector_id, amount, installment_number, payment_date, status, notes, created_at
FROM payments
WHERE credit_id = $1
ORDER BY payment_date ASC, created_at ASC`, creditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []credits.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *credits.Payment) error {
	if r == nil || r.db == nil {
		return errors.New("payment repo: nil db")
	}
	if payment == nil {
		return errors.New("payment repo: nil payment")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO payments (
	id, credit_id, tenant_id, collector_id, amount, installment_number, payment_date, status, notes, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		payment.ID, payment.CreditID, payment.TenantID, nullString(payment.CollectorID),
		payment.Amount, payment.InstallmentNumber, payment.PaymentDate,
		string(payment.Status), payment.Notes, payment.CreatedAt)
	return err
}

func scanPayment(row rowScanner) (credits.Payment, error) {
	var payment credits.Payment
	var collectorID sql.NullString
	var status string
	var notes sql.NullString
	err := row.Scan(
		&payment.ID,
		&payment.CreditID,
		&payment.TenantID,
		&collectorID,
		&payment.Amount,
		&payment.InstallmentNumber,
		&payment.PaymentDate,
		&status,
		&notes,
		&payment.CreatedAt,
	)
	if err != nil {
		return credits.Payment{}, err
	}
	if collectorID.Valid {
		payment.CollectorID = collectorID.String
	}
	if notes.Valid {
		payment.Notes = notes.String
	}
	payment.Status = credits.PaymentStatus(status)
	payment.PaymentDate = payment.PaymentDate.UTC()
	payment.CreatedAt = payment.CreatedAt.UTC()
	return payment, nil
}
