package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SWEEP_CONFIG", "")
	t.Setenv("SWEEP_GRACE_INSTALLMENTS", "")
	t.Setenv("SWEEP_CRON", "")
	t.Setenv("SWEEP_TENANTS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GraceInstallments != 2 {
		t.Fatalf("expected grace 2, got %d", cfg.GraceInstallments)
	}
	if cfg.Schedule.Cron != "0 3 * * *" {
		t.Fatalf("expected default cron, got %s", cfg.Schedule.Cron)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	data := []byte(`
grace_installments: 5
tenants:
  - tenant-1
  - tenant-2
schedule:
  cron: "30 4 * * *"
webhook_url: "https://hooks.example.com/sweep"
dry_run: true
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("SWEEP_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GraceInstallments != 5 {
		t.Fatalf("expected grace 5, got %d", cfg.GraceInstallments)
	}
	if len(cfg.Tenants) != 2 || cfg.Tenants[1] != "tenant-2" {
		t.Fatalf("expected two tenants, got %v", cfg.Tenants)
	}
	if cfg.Schedule.Cron != "30 4 * * *" {
		t.Fatalf("expected yaml cron, got %s", cfg.Schedule.Cron)
	}
	if !cfg.DryRun {
		t.Fatal("expected dry_run true")
	}
	if cfg.WebhookURL != "https://hooks.example.com/sweep" {
		t.Fatalf("unexpected webhook url %s", cfg.WebhookURL)
	}
}

func TestLoadConfigEnvTenants(t *testing.T) {
	t.Setenv("SWEEP_CONFIG", "")
	t.Setenv("SWEEP_TENANTS", "tenant-1, tenant-2 ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Tenants) != 2 {
		t.Fatalf("expected 2 tenants, got %v", cfg.Tenants)
	}
}
