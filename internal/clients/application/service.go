package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"collections-cloud/internal/auth"
	clients "collections-cloud/internal/clients/domain"
)

// ClientService handles borrower registry workflows.
type ClientService struct {
	repo     clients.ClientRepository
	tenantID string
}

// NewClientService constructs a service.
func NewClientService(repo clients.ClientRepository, tenantID string) (*ClientService, error) {
	if repo == nil {
		return nil, errors.New("client service: nil repo")
	}
	return &ClientService{repo: repo, tenantID: tenantID}, nil
}

// CreateInput carries new-client fields.
type CreateInput struct {
	Name        string
	Document    string
	Phone       string
	Address     string
	CollectorID string
}

// Create registers a client under the caller's tenant.
func (s *ClientService) Create(ctx context.Context, input CreateInput) (*clients.Client, error) {
	if input.Name == "" {
		return nil, clients.ErrEmptyName
	}
	now := time.Now().UTC()
	client := &clients.Client{
		ID:          "client-" + uuid.NewString(),
		TenantID:    s.resolveTenant(ctx),
		Name:        input.Name,
		Document:    input.Document,
		Phone:       input.Phone,
		Address:     input.Address,
		CollectorID: input.CollectorID,
		Status:      clients.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Get returns a client, enforcing tenant ownership.
func (s *ClientService) Get(ctx context.Context, id string) (*clients.Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, clients.ErrClientNotFound
	}
	if tenantID := s.resolveTenant(ctx); tenantID != "" && client.TenantID != tenantID {
		return nil, auth.ErrTenantMismatch
	}
	return client, nil
}

// List returns tenant clients, optionally scoped to one collector.
func (s *ClientService) List(ctx context.Context, collectorID string) ([]clients.Client, error) {
	return s.repo.ListByTenant(ctx, s.resolveTenant(ctx), collectorID)
}

// AssignCollector reassigns a client to a cobrador.
func (s *ClientService) AssignCollector(ctx context.Context, clientID, collectorID string) (*clients.Client, error) {
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.repo.AssignCollector(ctx, client.ID, collectorID, now); err != nil {
		return nil, err
	}
	client.CollectorID = collectorID
	client.UpdatedAt = now
	return client, nil
}

func (s *ClientService) resolveTenant(ctx context.Context) string {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return s.tenantID
}
