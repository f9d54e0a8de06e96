package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"collections-cloud/internal/auth"
	collectors "collections-cloud/internal/collectors/domain"
	collectorsmem "collections-cloud/internal/collectors/infrastructure/memory"
)

func newTestCollectorService(t *testing.T) (*CollectorService, *collectorsmem.CollectorRepository) {
	t.Helper()
	repo := collectorsmem.NewCollectorRepository()
	service, err := NewCollectorService(repo, "tenant-1")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service, repo
}

func seedCollector(t *testing.T, repo *collectorsmem.CollectorRepository, mutate func(*collectors.Collector)) *collectors.Collector {
	t.Helper()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	collector := &collectors.Collector{
		ID:        "collector-1",
		TenantID:  "tenant-1",
		Name:      "Juan Perez",
		Zone:      "norte",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(collector)
	}
	if err := repo.Create(context.Background(), collector); err != nil {
		t.Fatalf("seed collector: %v", err)
	}
	return collector
}

func TestCreateCollector(t *testing.T) {
	service, repo := newTestCollectorService(t)
	collector, err := service.Create(context.Background(), CreateInput{Name: "Luis Gomez", Zone: "sur"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(collector.ID, "collector-") {
		t.Fatalf("expected collector- id prefix, got %q", collector.ID)
	}
	if collector.TenantID != "tenant-1" {
		t.Fatalf("expected default tenant, got %q", collector.TenantID)
	}
	if !collector.Active {
		t.Fatalf("expected new collector to be active")
	}
	stored, err := repo.Get(context.Background(), collector.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected stored collector, got %v err %v", stored, err)
	}
}

func TestCreateCollectorRequiresName(t *testing.T) {
	service, _ := newTestCollectorService(t)
	if _, err := service.Create(context.Background(), CreateInput{}); !errors.Is(err, collectors.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestCreateCollectorUsesContextTenant(t *testing.T) {
	service, _ := newTestCollectorService(t)
	ctx := auth.WithIdentity(context.Background(), "tenant-2", auth.RoleAdmin, "user-1")
	collector, err := service.Create(ctx, CreateInput{Name: "Rosa Marin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if collector.TenantID != "tenant-2" {
		t.Fatalf("expected context tenant, got %q", collector.TenantID)
	}
}

func TestGetCollectorTenantMismatch(t *testing.T) {
	service, repo := newTestCollectorService(t)
	seedCollector(t, repo, func(c *collectors.Collector) { c.TenantID = "tenant-2" })
	if _, err := service.Get(context.Background(), "collector-1"); !errors.Is(err, auth.ErrTenantMismatch) {
		t.Fatalf("expected tenant mismatch, got %v", err)
	}
}

func TestGetCollectorNotFound(t *testing.T) {
	service, _ := newTestCollectorService(t)
	if _, err := service.Get(context.Background(), "collector-missing"); !errors.Is(err, collectors.ErrCollectorNotFound) {
		t.Fatalf("expected ErrCollectorNotFound, got %v", err)
	}
}

func TestListCollectorsScopedToTenant(t *testing.T) {
	service, repo := newTestCollectorService(t)
	seedCollector(t, repo, nil)
	seedCollector(t, repo, func(c *collectors.Collector) {
		c.ID = "collector-2"
		c.TenantID = "tenant-2"
		c.Name = "Other Tenant"
	})
	list, err := service.List(context.Background(), false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "collector-1" {
		t.Fatalf("expected only the tenant collector, got %v", list)
	}
}

func TestListCollectorsActiveOnly(t *testing.T) {
	service, repo := newTestCollectorService(t)
	seedCollector(t, repo, nil)
	seedCollector(t, repo, func(c *collectors.Collector) {
		c.ID = "collector-2"
		c.Name = "Inactivo"
		c.Active = false
	})
	list, err := service.List(context.Background(), true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "collector-1" {
		t.Fatalf("expected only the active collector, got %v", list)
	}
}

func TestSetActive(t *testing.T) {
	service, repo := newTestCollectorService(t)
	seedCollector(t, repo, nil)
	collector, err := service.SetActive(context.Background(), "collector-1", false)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if collector.Active {
		t.Fatalf("expected collector deactivated")
	}
	stored, err := repo.Get(context.Background(), "collector-1")
	if err != nil || stored == nil {
		t.Fatalf("expected stored collector, got %v err %v", stored, err)
	}
	if stored.Active {
		t.Fatalf("expected persisted deactivation")
	}
}

func TestSetActiveTenantMismatch(t *testing.T) {
	service, repo := newTestCollectorService(t)
	seedCollector(t, repo, func(c *collectors.Collector) { c.TenantID = "tenant-2" })
	if _, err := service.SetActive(context.Background(), "collector-1", false); !errors.Is(err, auth.ErrTenantMismatch) {
		t.Fatalf("expected tenant mismatch, got %v", err)
	}
}
