package clients

import (
	"context"
	"time"
)

// ClientRepository defines persistence for the borrower registry.
type ClientRepository interface {
	// Get fetches a client by id, returning (nil, nil) when absent.
	Get(ctx context.Context, id string) (*Client, error)
	// ListByTenant lists tenant clients, optionally filtered by collector.
	ListByTenant(ctx context.Context, tenantID, collectorID string) ([]Client, error)
	// Create inserts a client.
	Create(ctx context.Context, client *Client) error
	// Update overwrites mutable client fields.
	Update(ctx context.Context, client *Client) error
	// AssignCollector sets the responsible cobrador for a client.
	AssignCollector(ctx context.Context, clientID, collectorID string, updatedAt time.Time) error
}
