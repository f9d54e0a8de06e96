package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	clients "collections-cloud/internal/clients/domain"
)

// ClientRepository persists clients.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository constructs a repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Get fetches a client by id.
func (r *ClientRepository) Get(ctx context.Context, id string) (*clients.Client, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("client repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, name, document, phone, address, collector_id, status, created_at, updated_at
FROM clients
WHERE id = $1
LIMIT 1`, id)
	return scanClient(row)
}

// ListByTenant lists clients for a tenant, optionally filtered by collector.
func (r *ClientRepository) ListByTenant(ctx context.Context, tenantID, collectorID string) ([]clients.Client, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("client repo: nil db")
	}
	query := `
SELECT id, tenant_id, name, document, phone, address, collector_id, status, created_at, updated_at
FROM clients
WHERE tenant_id = $1`
	args := []any{tenantID}
	if collectorID != "" {
		query += ` AND collector_id = $2`
		args = append(args, collectorID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []clients.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		if client != nil {
			result = append(result, *client)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, client *clients.Client) error {
	if r == nil || r.db == nil {
		return errors.New("client repo: nil db")
	}
	if client == nil {
		return errors.New("client repo: nil client")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO clients (
	id, tenant_id, name, document, phone, address, collector_id, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		client.ID, client.TenantID, client.Name, client.Document, client.Phone, client.Address,
		nullString(client.CollectorID), client.Status, client.CreatedAt, client.UpdatedAt)
	return err
}

// Update overwrites mutable client fields.
func (r *ClientRepository) Update(ctx context.Context, client *clients.Client) error {
	if r == nil || r.db == nil {
		return errors.New("client repo: nil db")
	}
	if client == nil {
		return errors.New("client repo: nil client")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE clients
SET name = $1, document = $2, phone = $3, address = $4, collector_id = $5, status = $6, updated_at = $7
WHERE id = $8`,
		client.Name, client.Document, client.Phone, client.Address,
		nullString(client.CollectorID), client.Status, client.UpdatedAt, client.ID)
	return err
}

// AssignCollector sets the responsible cobrador for a client.
func (r *ClientRepository) AssignCollector(ctx context.Context, clientID, collectorID string, updatedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("client repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE clients
SET collector_id = $1, updated_at = $2
WHERE id = $3`, nullString(collectorID), updatedAt, clientID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*clients.Client, error) {
	var client clients.Client
	var collectorID sql.NullString
	err := row.Scan(
		&client.ID,
		&client.TenantID,
		&client.Name,
		&client.Document,
		&client.Phone,
		&client.Address,
		&collectorID,
		&client.Status,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if collectorID.Valid {
		client.CollectorID = collectorID.String
	}
	client.CreatedAt = client.CreatedAt.UTC()
	client.UpdatedAt = client.UpdatedAt.UTC()
	return &client, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
