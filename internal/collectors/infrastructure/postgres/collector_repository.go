package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	collectors "collections-cloud/internal/collectors/domain"
)

// CollectorRepository persists collectors.
type CollectorRepository struct {
	db *sql.DB
}

// NewCollectorRepository constructs a repository.
func NewCollectorRepository(db *sql.DB) *CollectorRepository {
	return &CollectorRepository{db: db}
}

// Get fetches a collector by id.
func (r *CollectorRepository) Get(ctx context.Context, id string) (*collectors.Collector, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("collector repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, name, phone, zone, active, created_at, updated_at
FROM collectors
WHERE id = $1
LIMIT 1`, id)
	return scanCollector(row)
}

// ListByTenant lists collectors for a tenant.
func (r *CollectorRepository) ListByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]collectors.Collector, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("collector repo: nil db")
	}
	query := `
SELECT id, tenant_id, name, phone, zone, active, created_at, updated_at
FROM collectors
WHERE tenant_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []collectors.Collector
	for rows.Next() {
		collector, err := scanCollector(rows)
		if err != nil {
			return nil, err
		}
		if collector != nil {
			result = append(result, *collector)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a collector.
func (r *CollectorRepository) Create(ctx context.Context, collector *collectors.Collector) error {
	if r == nil || r.db == nil {
		return errors.New("collector repo: nil db")
	}
	if collector == nil {
		return errors.New("collector repo: nil collector")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO collectors (
	id, tenant_id, name, phone, zone, active, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		collector.ID, collector.TenantID, collector.Name, collector.Phone, collector.Zone,
		collector.Active, collector.CreatedAt, collector.UpdatedAt)
	return err
}

// SetActive toggles a collector's active flag.
func (r *CollectorRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("collector repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE collectors
SET active = $1, updated_at = $2
WHERE id = $3`, active, updatedAt, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollector(row rowScanner) (*collectors.Collector, error) {
	var collector collectors.Collector
	err := row.Scan(
		&collector.ID,
		&collector.TenantID,
		&collector.Name,
		&collector.Phone,
		&collector.Zone,
		&collector.Active,
		&collector.CreatedAt,
		&collector.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	collector.CreatedAt = collector.CreatedAt.UTC()
	collector.UpdatedAt = collector.UpdatedAt.UTC()
	return &collector, nil
}
