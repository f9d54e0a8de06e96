package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"collections-cloud/internal/auth"
	clients "collections-cloud/internal/clients/domain"
	clientsmem "collections-cloud/internal/clients/infrastructure/memory"
)

func newTestClientService(t *testing.T) (*ClientService, *clientsmem.ClientRepository) {
	t.Helper()
	repo := clientsmem.NewClientRepository()
	service, err := NewClientService(repo, "tenant-1")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service, repo
}

func seedClient(t *testing.T, repo *clientsmem.ClientRepository, mutate func(*clients.Client)) *clients.Client {
	t.Helper()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	client := &clients.Client{
		ID:        "client-1",
		TenantID:  "tenant-1",
		Name:      "Maria Lopez",
		Phone:     "555-0100",
		Status:    clients.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(client)
	}
	if err := repo.Create(context.Background(), client); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}

func TestCreateClient(t *testing.T) {
	service, repo := newTestClientService(t)
	client, err := service.Create(context.Background(), CreateInput{Name: "Pedro Diaz", Document: "DOC-9"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(client.ID, "client-") {
		t.Fatalf("expected client- id prefix, got %q", client.ID)
	}
	if client.TenantID != "tenant-1" {
		t.Fatalf("expected default tenant, got %q", client.TenantID)
	}
	if client.Status != clients.StatusActive {
		t.Fatalf("expected active status, got %q", client.Status)
	}
	stored, err := repo.Get(context.Background(), client.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected stored client, got %v err %v", stored, err)
	}
}

func TestCreateClientRequiresName(t *testing.T) {
	service, _ := newTestClientService(t)
	if _, err := service.Create(context.Background(), CreateInput{}); !errors.Is(err, clients.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestCreateClientUsesContextTenant(t *testing.T) {
	service, _ := newTestClientService(t)
	ctx := auth.WithIdentity(context.Background(), "tenant-2", auth.RoleManager, "user-1")
	client, err := service.Create(ctx, CreateInput{Name: "Ana Ruiz"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if client.TenantID != "tenant-2" {
		t.Fatalf("expected context tenant, got %q", client.TenantID)
	}
}

func TestGetClientTenantMismatch(t *testing.T) {
	service, repo := newTestClientService(t)
	seedClient(t, repo, func(c *clients.Client) { c.TenantID = "tenant-2" })
	if _, err := service.Get(context.Background(), "client-1"); !errors.Is(err, auth.ErrTenantMismatch) {
		t.Fatalf("expected tenant mismatch, got %v", err)
	}
}

func TestGetClientNotFound(t *testing.T) {
	service, _ := newTestClientService(t)
	if _, err := service.Get(context.Background(), "client-missing"); !errors.Is(err, clients.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestListClientsScopedToTenant(t *testing.T) {
	service, repo := newTestClientService(t)
	seedClient(t, repo, nil)
	seedClient(t, repo, func(c *clients.Client) {
		c.ID = "client-2"
		c.TenantID = "tenant-2"
		c.Name = "Other Tenant"
	})
	list, err := service.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 client, got %d", len(list))
	}
	if list[0].ID != "client-1" {
		t.Fatalf("expected client-1, got %q", list[0].ID)
	}
}

func TestListClientsByCollector(t *testing.T) {
	service, repo := newTestClientService(t)
	seedClient(t, repo, func(c *clients.Client) { c.CollectorID = "collector-1" })
	seedClient(t, repo, func(c *clients.Client) {
		c.ID = "client-2"
		c.Name = "Unassigned"
	})
	list, err := service.List(context.Background(), "collector-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "client-1" {
		t.Fatalf("expected only the assigned client, got %v", list)
	}
}

func TestAssignCollector(t *testing.T) {
	service, repo := newTestClientService(t)
	seedClient(t, repo, nil)
	client, err := service.AssignCollector(context.Background(), "client-1", "collector-7")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if client.CollectorID != "collector-7" {
		t.Fatalf("expected collector-7, got %q", client.CollectorID)
	}
	stored, err := repo.Get(context.Background(), "client-1")
	if err != nil || stored == nil {
		t.Fatalf("expected stored client, got %v err %v", stored, err)
	}
	if stored.CollectorID != "collector-7" {
		t.Fatalf("expected persisted collector-7, got %q", stored.CollectorID)
	}
}

func TestAssignCollectorTenantMismatch(t *testing.T) {
	service, repo := newTestClientService(t)
	seedClient(t, repo, func(c *clients.Client) { c.TenantID = "tenant-2" })
	if _, err := service.AssignCollector(context.Background(), "client-1", "collector-7"); !errors.Is(err, auth.ErrTenantMismatch) {
		t.Fatalf("expected tenant mismatch, got %v", err)
	}
}
