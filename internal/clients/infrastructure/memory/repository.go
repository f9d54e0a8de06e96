package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	clients "collections-cloud/internal/clients/domain"
)

// ClientRepository is an in-memory repository for clients.
type ClientRepository struct {
	mu   sync.RWMutex
	data map[string]*clients.Client
}

// NewClientRepository constructs a repository.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{data: make(map[string]*clients.Client)}
}

// Get fetches a client.
func (r *ClientRepository) Get(ctx context.Context, id string) (*clients.Client, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	copied := *client
	return &copied, nil
}

// ListByTenant lists tenant clients, optionally filtered by collector.
func (r *ClientRepository) ListByTenant(ctx context.Context, tenantID, collectorID string) ([]clients.Client, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []clients.Client
	for _, client := range r.data {
		if client.TenantID != tenantID {
			continue
		}
		if collectorID != "" && client.CollectorID != collectorID {
			continue
		}
		result = append(result, *client)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, client *clients.Client) error {
	_ = ctx
	if client == nil {
		return errors.New("client repo: nil client")
	}
	copied := *client
	r.mu.Lock()
	r.data[client.ID] = &copied
	r.mu.Unlock()
	return nil
}

// Update overwrites mutable client fields.
func (r *ClientRepository) Update(ctx context.Context, client *clients.Client) error {
	_ = ctx
	if client == nil {
		return errors.New("client repo: nil client")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[client.ID]
	if !ok {
		return clients.ErrClientNotFound
	}
	existing.Name = client.Name
	existing.Document = client.Document
	existing.Phone = client.Phone
	existing.Address = client.Address
	existing.CollectorID = client.CollectorID
	existing.Status = client.Status
	existing.UpdatedAt = client.UpdatedAt
	return nil
}

// AssignCollector sets the responsible cobrador for a client.
func (r *ClientRepository) AssignCollector(ctx context.Context, clientID, collectorID string, updatedAt time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.data[clientID]
	if !ok {
		return clients.ErrClientNotFound
	}
	client.CollectorID = collectorID
	client.UpdatedAt = updatedAt
	return nil
}
