package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	credits "collections-cloud/internal/credits/domain"
	"collections-cloud/internal/credits/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*ReportService, *memory.CreditRepository, *memory.PaymentRepository) {
	t.Helper()
	creditRepo := memory.NewCreditRepository()
	paymentRepo := memory.NewPaymentRepository()
	service, err := NewReportService(creditRepo, paymentRepo, fixedClock{now: testNow}, "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return service, creditRepo, paymentRepo
}

func seedCredit(t *testing.T, repo *memory.CreditRepository, id string, mutate func(*credits.Credit)) {
	t.Helper()
	installment := decimal.NewFromInt(100)
	total := 10
	credit := &credits.Credit{
		ID:                id,
		TenantID:          "tenant-1",
		ClientID:          "client-1",
		Amount:            decimal.NewFromInt(800),
		TotalAmount:       decimal.NewFromInt(1000),
		Balance:           decimal.NewFromInt(1000),
		InstallmentAmount: &installment,
		TotalInstallments: &total,
		Frequency:         credits.FrequencyWeekly,
		StartDate:         testNow.AddDate(0, 0, -21),
		Status:            credits.StatusActive,
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}
	if mutate != nil {
		mutate(credit)
	}
	if err := repo.Create(context.Background(), credit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildPortfolio(t *testing.T) {
	service, creditRepo, paymentRepo := newTestService(t)
	seedCredit(t, creditRepo, "credit-1", nil)
	seedCredit(t, creditRepo, "credit-2", func(c *credits.Credit) {
		// fully caught up, started today
		c.StartDate = testNow
	})
	seedCredit(t, creditRepo, "credit-3", func(c *credits.Credit) {
		c.Status = credits.StatusCompleted
	})
	if err := paymentRepo.Create(context.Background(), &credits.Payment{
		ID:                "payment-1",
		CreditID:          "credit-2",
		TenantID:          "tenant-1",
		Amount:            decimal.NewFromInt(100),
		InstallmentNumber: 1,
		PaymentDate:       testNow,
		Status:            credits.PaymentStatusCompleted,
		CreatedAt:         testNow,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := service.BuildPortfolio(context.Background(), "", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Totals.OpenCredits != 2 {
		t.Fatalf("expected 2 open credits, got %d", report.Totals.OpenCredits)
	}
	if report.Totals.OverdueCredits != 1 {
		t.Fatalf("expected 1 overdue credit, got %d", report.Totals.OverdueCredits)
	}
	if !report.Totals.OverdueAmount.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected overdue amount 400, got %s", report.Totals.OverdueAmount)
	}
	if !report.Totals.Balance.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected balance 2000, got %s", report.Totals.Balance)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Rows))
	}
}

func TestBuildPortfolioPendingUnavailable(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, "credit-1", func(c *credits.Credit) {
		c.TotalInstallments = nil
	})

	report, err := service.BuildPortfolio(context.Background(), "", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report.Rows))
	}
	if report.Rows[0].Pending != nil {
		t.Fatalf("expected pending nil, got %v", *report.Rows[0].Pending)
	}
}

func TestBuildPortfolioFiltersCollector(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, "credit-1", func(c *credits.Credit) {
		c.CollectorID = "collector-1"
	})
	seedCredit(t, creditRepo, "credit-2", func(c *credits.Credit) {
		c.CollectorID = "collector-2"
	})

	report, err := service.BuildPortfolio(context.Background(), "collector-1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Rows) != 1 || report.Rows[0].CreditID != "credit-1" {
		t.Fatalf("expected only credit-1, got %v", report.Rows)
	}
	if report.CollectorID != "collector-1" {
		t.Fatalf("expected collector-1, got %s", report.CollectorID)
	}
}
