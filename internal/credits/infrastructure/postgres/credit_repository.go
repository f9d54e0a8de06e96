package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	credits "collections-cloud/internal/credits/domain"
)

// CreditRepository persists credits.
type CreditRepository struct {
	db *sql.DB
}

// NewCreditRepository constructs a repository.
func NewCreditRepository(db *sql.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

const creditColumns = `id, tenant_id, client_id, collector_id, amount, total_amount, balance,
	installment_amount, total_installments, paid_installments,
	frequency, start_date, end_date, status, created_at, updated_at`

// GetByID fetches a credit.
func (r *CreditRepository) GetByID(ctx context.Context, id string) (*credits.Credit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("credit repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+creditColumns+`
FROM credits
WHERE id = $1
LIMIT 1`, id)
	return scanCredit(row)
}

// ListByTenant lists tenant credits matching the filter, newest first.
func (r *CreditRepository) ListByTenant(ctx context.Context, tenantID string, filter credits.CreditFilter) ([]credits.Credit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("credit repo: nil db")
	}
	query := `
SELECT ` + creditColumns + `
FROM credits
WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		query += ` AND client_id = $` + strconv.Itoa(len(args))
	}
	if filter.CollectorID != "" {
		args = append(args, filter.CollectorID)
		query += ` AND collector_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.OpenOnly {
		query += ` AND status IN ('active','defaulted','on_hold')`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []credits.Credit
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		if credit != nil {
			result = append(result, *credit)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a credit.
func (r *CreditRepository) Create(ctx context.Context, credit *credits.Credit) error {
	if r == nil || r.db == nil {
		return errors.New("credit repo: nil db")
	}
	if credit == nil {
		return credits.ErrNilCredit
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO credits (
	id, tenant_id, client_id, collector_id, amount, total_amount, balance,
	installment_amount, total_installments, paid_installments,
	frequency, start_date, end_date, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		credit.ID, credit.TenantID, credit.ClientID, nullString(credit.CollectorID),
		credit.Amount, credit.TotalAmount, credit.Balance,
		nullDecimal(credit.InstallmentAmount), nullInt(credit.TotalInstallments), nullInt(credit.PaidInstallments),
		string(credit.Frequency), credit.StartDate, nullTime(credit.EndDate),
		string(credit.Status), credit.CreatedAt, credit.UpdatedAt)
	return err
}

// UpdateStatus transitions a credit's lifecycle status.
func (r *CreditRepository) UpdateStatus(ctx context.Context, id string, status credits.Status, updatedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("credit repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE credits
SET status = $1, updated_at = $2
WHERE id = $3`, string(status), updatedAt, id)
	return err
}

// ApplyPayment updates the denormalized balance and paid_installments
// counter after a payment was recorded. A nil counter is written as NULL,
// keeping history-derived credits history-derived.
func (r *CreditRepository) ApplyPayment(ctx context.Context, id string, balance decimal.Decimal, paidInstallments *int, updatedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("credit repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE credits
SET balance = $1, paid_installments = $2, updated_at = $3
WHERE id = $4`, balance, nullInt(paidInstallments), updatedAt, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredit(row rowScanner) (*credits.Credit, error) {
	var credit credits.Credit
	var collectorID sql.NullString
	var installmentAmount decimal.NullDecimal
	var totalInstallments sql.NullInt64
	var paidInstallments sql.NullInt64
	var frequency string
	var status string
	var endDate sql.NullTime
	err := row.Scan(
		&credit.ID,
		&credit.TenantID,
		&credit.ClientID,
		&collectorID,
		&credit.Amount,
		&credit.TotalAmount,
		&credit.Balance,
		&installmentAmount,
		&totalInstallments,
		&paidInstallments,
		&frequency,
		&credit.StartDate,
		&endDate,
		&status,
		&credit.CreatedAt,
		&credit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if collectorID.Valid {
		credit.CollectorID = collectorID.String
	}
	if installmentAmount.Valid {
		amount := installmentAmount.Decimal
		credit.InstallmentAmount = &amount
	}
	if totalInstallments.Valid {
		total := int(totalInstallments.Int64)
		credit.TotalInstallments = &total
	}
	if paidInstallments.Valid {
		paid := int(paidInstallments.Int64)
		credit.PaidInstallments = &paid
	}
	// stored values outside the enum degrade to the custom/daily policy
	// downstream instead of failing the read.
	credit.Frequency = credits.Frequency(frequency)
	credit.Status = credits.Status(status)
	credit.StartDate = credit.StartDate.UTC()
	if endDate.Valid {
		credit.EndDate = endDate.Time.UTC()
	}
	credit.CreatedAt = credit.CreatedAt.UTC()
	credit.UpdatedAt = credit.UpdatedAt.UTC()
	return &credit, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullDecimal(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *value, Valid: true}
}

func nullTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value, Valid: true}
}

