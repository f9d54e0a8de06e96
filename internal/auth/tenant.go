package auth

import (
	"context"

	clients "collections-cloud/internal/clients/domain"
)

// ClientTenantChecker validates client tenant ownership.
type ClientTenantChecker interface {
	EnsureClientTenant(ctx context.Context, tenantID, clientID string) error
}

// ClientChecker checks client ownership using the clients registry.
type ClientChecker struct {
	repo clients.ClientRepository
}

// NewClientChecker constructs a ClientChecker.
func NewClientChecker(repo clients.ClientRepository) *ClientChecker {
	if repo == nil {
		return nil
	}
	return &ClientChecker{repo: repo}
}

// EnsureClientTenant verifies the client belongs to the tenant.
func (c *ClientChecker) EnsureClientTenant(ctx context.Context, tenantID, clientID string) error {
	if c == nil || c.repo == nil {
		return nil
	}
	if tenantID == "" || clientID == "" {
		return nil
	}
	client, err := c.repo.Get(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return ErrNotFound
	}
	if client.TenantID != tenantID {
		return ErrTenantMismatch
	}
	return nil
}
