package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"collections-cloud/internal/auth"
	collectors "collections-cloud/internal/collectors/domain"
)

// CollectorService handles cobrador registry workflows.
type CollectorService struct {
	repo     collectors.CollectorRepository
	tenantID string
}

// NewCollectorService constructs a service.
func NewCollectorService(repo collectors.CollectorRepository, tenantID string) (*CollectorService, error) {
	if repo == nil {
		return nil, errors.New("collector service: nil repo")
	}
	return &CollectorService{repo: repo, tenantID: tenantID}, nil
}

// CreateInput carries new-collector fields.
type CreateInput struct {
	Name  string
	Phone string
	Zone  string
}

// Create registers a collector under the caller's tenant.
func (s *CollectorService) Create(ctx context.Context, input CreateInput) (*collectors.Collector, error) {
	if input.Name == "" {
		return nil, collectors.ErrEmptyName
	}
	now := time.Now().UTC()
	collector := &collectors.Collector{
		ID:        "collector-" + uuid.NewString(),
		TenantID:  s.resolveTenant(ctx),
		Name:      input.Name,
		Phone:     input.Phone,
		Zone:      input.Zone,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, collector); err != nil {
		return nil, err
	}
	return collector, nil
}

// Get returns a collector, enforcing tenant ownership.
func (s *CollectorService) Get(ctx context.Context, id string) (*collectors.Collector, error) {
	collector, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		return nil, collectors.ErrCollectorNotFound
	}
	if tenantID := s.resolveTenant(ctx); tenantID != "" && collector.TenantID != tenantID {
		return nil, auth.ErrTenantMismatch
	}
	return collector, nil
}

// List returns tenant collectors.
func (s *CollectorService) List(ctx context.Context, activeOnly bool) ([]collectors.Collector, error) {
	return s.repo.ListByTenant(ctx, s.resolveTenant(ctx), activeOnly)
}

// SetActive activates or deactivates a collector.
func (s *CollectorService) SetActive(ctx context.Context, id string, active bool) (*collectors.Collector, error) {
	collector, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.repo.SetActive(ctx, collector.ID, active, now); err != nil {
		return nil, err
	}
	collector.Active = active
	collector.UpdatedAt = now
	return collector, nil
}

func (s *CollectorService) resolveTenant(ctx context.Context) string {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return s.tenantID
}
