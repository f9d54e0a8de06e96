package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"collections-cloud/internal/auth"
	credits "collections-cloud/internal/credits/domain"
	"collections-cloud/internal/observability/metrics"
)

// CreditService exposes credit lookups, schedule metrics and payment
// recording. Schedule metrics are recomputed from stored state on every
// call; the service holds no caches.
type CreditService struct {
	credits  credits.CreditRepository
	payments credits.PaymentRepository
	clock    credits.Clock
	tenantID string
}

// NewCreditService constructs a service.
func NewCreditService(creditRepo credits.CreditRepository, paymentRepo credits.PaymentRepository, clock credits.Clock, tenantID string) (*CreditService, error) {
	if creditRepo == nil {
		return nil, errors.New("credit service: nil credit repo")
	}
	if paymentRepo == nil {
		return nil, errors.New("credit service: nil payment repo")
	}
	if clock == nil {
		clock = credits.SystemClock{}
	}
	return &CreditService{credits: creditRepo, payments: paymentRepo, clock: clock, tenantID: tenantID}, nil
}

// CreateInput carries loan-origination fields. Validation happens here, at
// the workflow boundary; schedule computations never validate.
type CreateInput struct {
	ClientID          string
	CollectorID       string
	Amount            decimal.Decimal
	TotalAmount       decimal.Decimal
	InstallmentAmount *decimal.Decimal
	TotalInstallments *int
	Frequency         string
	StartDate         time.Time
	EndDate           time.Time
}

// Create originates a credit in pending approval state.
func (s *CreditService) Create(ctx context.Context, input CreateInput) (*credits.Credit, error) {
	if input.ClientID == "" {
		return nil, errors.New("credit service: client_id required")
	}
	if !input.Amount.IsPositive() || !input.TotalAmount.IsPositive() {
		return nil, errors.New("credit service: amount and total_amount must be positive")
	}
	if input.TotalAmount.LessThan(input.Amount) {
		return nil, errors.New("credit service: total_amount below principal")
	}
	frequency, ok := credits.NormalizeFrequency(input.Frequency)
	if !ok {
		return nil, errors.New("credit service: invalid frequency")
	}
	if input.StartDate.IsZero() {
		return nil, errors.New("credit service: start_date required")
	}
	if !input.EndDate.IsZero() && input.EndDate.Before(input.StartDate) {
		return nil, errors.New("credit service: end_date before start_date")
	}

	now := s.clock.Now()
	credit := &credits.Credit{
		ID:                "credit-" + uuid.NewString(),
		TenantID:          s.resolveTenant(ctx),
		ClientID:          input.ClientID,
		CollectorID:       input.CollectorID,
		Amount:            input.Amount,
		TotalAmount:       input.TotalAmount,
		Balance:           input.TotalAmount,
		InstallmentAmount: input.InstallmentAmount,
		TotalInstallments: input.TotalInstallments,
		Frequency:         frequency,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		Status:            credits.StatusPendingApproval,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.credits.Create(ctx, credit); err != nil {
		return nil, err
	}
	return credit, nil
}

// Get returns a credit, enforcing tenant ownership.
func (s *CreditService) Get(ctx context.Context, id string) (*credits.Credit, error) {
	credit, err := s.credits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, credits.ErrCreditNotFound
	}
	if tenantID := s.resolveTenant(ctx); tenantID != "" && credit.TenantID != tenantID {
		return nil, auth.ErrTenantMismatch
	}
	return credit, nil
}

// List returns tenant credits matching the filter.
func (s *CreditService) List(ctx context.Context, filter credits.CreditFilter) ([]credits.Credit, error) {
	return s.credits.ListByTenant(ctx, s.resolveTenant(ctx), filter)
}

// ListPayments returns the payment history of a credit.
func (s *CreditService) ListPayments(ctx context.Context, creditID string) ([]credits.Payment, error) {
	if _, err := s.Get(ctx, creditID); err != nil {
		return nil, err
	}
	return s.payments.ListByCredit(ctx, creditID)
}

// Schedule derives the full schedule metrics for a credit. A zero asOf
// means "now" per the service clock.
func (s *CreditService) Schedule(ctx context.Context, creditID string, asOf time.Time) (credits.ScheduleMetrics, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveScheduleCompute(result, time.Since(start))
	}()

	credit, paymentList, err := s.load(ctx, creditID)
	if err != nil {
		result = metrics.ResultError
		return credits.ScheduleMetrics{}, err
	}
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	computed, err := credits.ComputeScheduleMetrics(credit, paymentList, asOf)
	if err != nil {
		result = metrics.ResultError
		return credits.ScheduleMetrics{}, err
	}
	return computed, nil
}

// ExpectedInstallments returns how many installments should be paid by asOf.
func (s *CreditService) ExpectedInstallments(ctx context.Context, creditID string, asOf time.Time) (int, error) {
	credit, err := s.Get(ctx, creditID)
	if err != nil {
		return 0, err
	}
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	return credits.ExpectedInstallments(credit, asOf), nil
}

// CompletedInstallments returns how many installments are fully paid.
func (s *CreditService) CompletedInstallments(ctx context.Context, creditID string) (int, error) {
	credit, paymentList, err := s.load(ctx, creditID)
	if err != nil {
		return 0, err
	}
	return credits.CompletedInstallments(credit, paymentList), nil
}

// IsOverdue reports schedule delinquency as of asOf.
func (s *CreditService) IsOverdue(ctx context.Context, creditID string, asOf time.Time) (bool, error) {
	credit, paymentList, err := s.load(ctx, creditID)
	if err != nil {
		return false, err
	}
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	return credits.IsOverdue(credit, paymentList, asOf), nil
}

// OverdueAmount returns the monetary value of missed installments.
func (s *CreditService) OverdueAmount(ctx context.Context, creditID string, asOf time.Time) (decimal.Decimal, error) {
	credit, paymentList, err := s.load(ctx, creditID)
	if err != nil {
		return decimal.Zero, err
	}
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	return credits.OverdueAmount(credit, paymentList, asOf), nil
}

// PendingInstallments returns installments remaining against the planned
// term. Credits without total_installments surface ErrMissingScheduleData.
func (s *CreditService) PendingInstallments(ctx context.Context, creditID string) (int, error) {
	credit, paymentList, err := s.load(ctx, creditID)
	if err != nil {
		return 0, err
	}
	return credits.PendingInstallments(credit, paymentList)
}

// RecordPaymentInput carries payment-recording fields.
type RecordPaymentInput struct {
	CreditID          string
	CollectorID       string
	Amount            decimal.Decimal
	InstallmentNumber int
	PaymentDate       time.Time
	Status            string
	Notes             string
}

// RecordPayment appends a payment and maintains the credit's denormalized
// fields: settled payments reduce the balance, and when the credit carries
// a paid_installments counter it is refreshed from the full history. A
// credit without the counter keeps it nil; completion stays derived from
// payment history and recording never initializes the counter. A credit
// whose balance reaches zero transitions to completed.
func (s *CreditService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*credits.Payment, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObservePaymentRecord(result, time.Since(start))
	}()

	credit, err := s.Get(ctx, input.CreditID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if !input.Amount.IsPositive() {
		result = metrics.ResultError
		return nil, errors.New("credit service: payment amount must be positive")
	}
	if input.InstallmentNumber <= 0 {
		result = metrics.ResultError
		return nil, errors.New("credit service: installment_number must be positive")
	}
	status, ok := credits.NormalizePaymentStatus(input.Status)
	if !ok {
		result = metrics.ResultError
		return nil, errors.New("credit service: invalid payment status")
	}

	now := s.clock.Now()
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}
	payment := &credits.Payment{
		ID:                "payment-" + uuid.NewString(),
		CreditID:          credit.ID,
		TenantID:          credit.TenantID,
		CollectorID:       input.CollectorID,
		Amount:            input.Amount,
		InstallmentNumber: input.InstallmentNumber,
		PaymentDate:       paymentDate,
		Status:            status,
		Notes:             input.Notes,
		CreatedAt:         now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	if !status.Settled() {
		return payment, nil
	}

	balance := credit.Balance.Sub(input.Amount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	paidInstallments := credit.PaidInstallments
	if paidInstallments != nil {
		history, err := s.payments.ListByCredit(ctx, credit.ID)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		derived := credits.DerivedCompletedInstallments(credit, history)
		paidInstallments = &derived
	}
	if err := s.credits.ApplyPayment(ctx, credit.ID, balance, paidInstallments, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if balance.IsZero() && credit.IsOpen() {
		if err := s.credits.UpdateStatus(ctx, credit.ID, credits.StatusCompleted, now); err != nil {
			result = metrics.ResultError
			return nil, err
		}
	}
	return payment, nil
}

// UpdateStatus transitions a credit's lifecycle status.
func (s *CreditService) UpdateStatus(ctx context.Context, creditID, status string) (*credits.Credit, error) {
	credit, err := s.Get(ctx, creditID)
	if err != nil {
		return nil, err
	}
	normalized, ok := credits.NormalizeStatus(status)
	if !ok {
		return nil, errors.New("credit service: invalid status")
	}
	now := s.clock.Now()
	if err := s.credits.UpdateStatus(ctx, credit.ID, normalized, now); err != nil {
		return nil, err
	}
	credit.Status = normalized
	credit.UpdatedAt = now
	return credit, nil
}

func (s *CreditService) load(ctx context.Context, creditID string) (*credits.Credit, []credits.Payment, error) {
	credit, err := s.Get(ctx, creditID)
	if err != nil {
		return nil, nil, err
	}
	// the denormalized counter short-circuits derivation, so the history
	// read is skipped when it is present.
	if credit.PaidInstallments != nil {
		return credit, nil, nil
	}
	paymentList, err := s.payments.ListByCredit(ctx, creditID)
	if err != nil {
		return nil, nil, err
	}
	return credit, paymentList, nil
}

func (s *CreditService) resolveTenant(ctx context.Context) string {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return s.tenantID
}
