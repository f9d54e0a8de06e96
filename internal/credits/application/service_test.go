package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"collections-cloud/internal/auth"
	credits "collections-cloud/internal/credits/domain"
	"collections-cloud/internal/credits/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*CreditService, *memory.CreditRepository, *memory.PaymentRepository) {
	t.Helper()
	creditRepo := memory.NewCreditRepository()
	paymentRepo := memory.NewPaymentRepository()
	service, err := NewCreditService(creditRepo, paymentRepo, fixedClock{now: testNow}, "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return service, creditRepo, paymentRepo
}

func seedCredit(t *testing.T, repo *memory.CreditRepository, mutate func(*credits.Credit)) *credits.Credit {
	t.Helper()
	installment := decimal.NewFromInt(100)
	total := 10
	credit := &credits.Credit{
		ID:                "credit-1",
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
	return credit
}

func TestCreateCredit(t *testing.T) {
	service, _, _ := newTestService(t)

	installment := decimal.NewFromInt(50)
	total := 20
	credit, err := service.Create(context.Background(), CreateInput{
		ClientID:          "client-1",
		Amount:            decimal.NewFromInt(900),
		TotalAmount:       decimal.NewFromInt(1000),
		InstallmentAmount: &installment,
		TotalInstallments: &total,
		Frequency:         "weekly",
		StartDate:         testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit.Status != credits.StatusPendingApproval {
		t.Fatalf("expected pending_approval, got %s", credit.Status)
	}
	if credit.TenantID != "tenant-1" {
		t.Fatalf("expected tenant-1, got %s", credit.TenantID)
	}
	if !credit.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected opening balance 1000, got %s", credit.Balance)
	}
}

func TestCreateCreditRejectsInvalidFrequency(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Create(context.Background(), CreateInput{
		ClientID:    "client-1",
		Amount:      decimal.NewFromInt(100),
		TotalAmount: decimal.NewFromInt(100),
		Frequency:   "fortnightly",
		StartDate:   testNow,
	})
	if err == nil {
		t.Fatal("expected error for invalid frequency")
	}
}

func TestGetEnforcesTenant(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) { c.TenantID = "tenant-other" })

	_, err := service.Get(context.Background(), "credit-1")
	if !errors.Is(err, auth.ErrTenantMismatch) {
		t.Fatalf("expected tenant mismatch, got %v", err)
	}
}

func TestGetUsesContextTenant(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) { c.TenantID = "tenant-other" })

	ctx := auth.WithIdentity(context.Background(), "tenant-other", auth.RoleManager, "user-1")
	credit, err := service.Get(ctx, "credit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit.TenantID != "tenant-other" {
		t.Fatalf("expected tenant-other, got %s", credit.TenantID)
	}
}

func TestScheduleMetrics(t *testing.T) {
	service, creditRepo, paymentRepo := newTestService(t)
	seedCredit(t, creditRepo, nil)
	recordSettled(t, paymentRepo, 1, 100)

	metrics, err := service.Schedule(context.Background(), "credit-1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Expected != 4 {
		t.Fatalf("expected 4 expected installments, got %d", metrics.Expected)
	}
	if metrics.Completed != 1 {
		t.Fatalf("expected 1 completed installment, got %d", metrics.Completed)
	}
	if !metrics.Overdue {
		t.Fatal("expected credit to be overdue")
	}
	if !metrics.OverdueAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected overdue amount 300, got %s", metrics.OverdueAmount)
	}
	if metrics.Pending == nil || *metrics.Pending != 9 {
		t.Fatalf("expected 9 pending installments, got %v", metrics.Pending)
	}
}

func TestScheduleUsesClockWhenAsOfZero(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) {
		c.StartDate = testNow.AddDate(0, 0, 1)
	})

	metrics, err := service.Schedule(context.Background(), "credit-1", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Expected != 0 {
		t.Fatalf("expected 0 before start, got %d", metrics.Expected)
	}
	if metrics.Overdue {
		t.Fatal("expected credit not overdue before start")
	}
}

func TestPendingInstallmentsMissingSchedule(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) { c.TotalInstallments = nil })

	_, err := service.PendingInstallments(context.Background(), "credit-1")
	if !errors.Is(err, credits.ErrMissingScheduleData) {
		t.Fatalf("expected missing schedule data, got %v", err)
	}
}

func TestRecordPaymentReducesBalance(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, nil)

	payment, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(100),
		InstallmentNumber: 1,
		Status:            "completed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payment.PaymentDate.Equal(testNow) {
		t.Fatalf("expected payment date %s, got %s", testNow, payment.PaymentDate)
	}

	credit, err := service.Get(context.Background(), "credit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !credit.Balance.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected balance 900, got %s", credit.Balance)
	}
	if credit.Status != credits.StatusActive {
		t.Fatalf("expected status active, got %s", credit.Status)
	}
}

func TestRecordPaymentRefreshesCounter(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) {
		zero := 0
		c.PaidInstallments = &zero
	})

	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(60),
		InstallmentNumber: 1,
		Status:            "partial",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(40),
		InstallmentNumber: 1,
		Status:            "completed",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	credit, err := service.Get(context.Background(), "credit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit.PaidInstallments == nil || *credit.PaidInstallments != 1 {
		t.Fatalf("expected counter 1, got %v", credit.PaidInstallments)
	}
}

func TestRecordPaymentKeepsMissingCounterNil(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) { c.PaidInstallments = nil })

	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(100),
		InstallmentNumber: 1,
		Status:            "completed",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	credit, err := service.Get(context.Background(), "credit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit.PaidInstallments != nil {
		t.Fatalf("expected counter to stay nil, got %d", *credit.PaidInstallments)
	}
	if !credit.Balance.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected balance 900, got %s", credit.Balance)
	}
}

func TestRecordPaymentIgnoresUnsettled(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, nil)

	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(100),
		InstallmentNumber: 1,
		Status:            "cancelled",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	credit, err := service.Get(context.Background(), "credit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !credit.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected balance unchanged at 1000, got %s", credit.Balance)
	}
}

func TestRecordPaymentCompletesCredit(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) {
		c.Balance = decimal.NewFromInt(100)
	})

	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(100),
		InstallmentNumber: 10,
		Status:            "completed",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	credit, err := service.Get(context.Background(), "credit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !credit.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", credit.Balance)
	}
	if credit.Status != credits.StatusCompleted {
		t.Fatalf("expected status completed, got %s", credit.Status)
	}
}

func TestRecordPaymentClampsOverpayment(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, func(c *credits.Credit) {
		c.Balance = decimal.NewFromInt(50)
	})

	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(100),
		InstallmentNumber: 10,
		Status:            "completed",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	credit, err := service.Get(context.Background(), "credit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !credit.Balance.IsZero() {
		t.Fatalf("expected balance clamped to zero, got %s", credit.Balance)
	}
}

func TestRecordPaymentRejectsInvalidInput(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, nil)

	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(-10),
		InstallmentNumber: 1,
		Status:            "completed",
	}); err == nil {
		t.Fatal("expected error for negative amount")
	}
	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(10),
		InstallmentNumber: 0,
		Status:            "completed",
	}); err == nil {
		t.Fatal("expected error for installment number zero")
	}
	if _, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		CreditID:          "credit-1",
		Amount:            decimal.NewFromInt(10),
		InstallmentNumber: 1,
		Status:            "bounced",
	}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestUpdateStatus(t *testing.T) {
	service, creditRepo, _ := newTestService(t)
	seedCredit(t, creditRepo, nil)

	credit, err := service.UpdateStatus(context.Background(), "credit-1", "defaulted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit.Status != credits.StatusDefaulted {
		t.Fatalf("expected defaulted, got %s", credit.Status)
	}

	if _, err := service.UpdateStatus(context.Background(), "credit-1", "exploded"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func recordSettled(t *testing.T, repo *memory.PaymentRepository, installment int, amount int64) {
	t.Helper()
	err := repo.Create(context.Background(), &credits.Payment{
		ID:                "payment-seed",
		CreditID:          "credit-1",
		TenantID:          "tenant-1",
		Amount:            decimal.NewFromInt(amount),
		InstallmentNumber: installment,
		PaymentDate:       testNow.AddDate(0, 0, -14),
		Status:            credits.PaymentStatusCompleted,
		CreatedAt:         testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
