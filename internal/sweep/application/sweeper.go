package application

import (
	"context"
	"errors"
	"log"
	"time"

	credits "collections-cloud/internal/credits/domain"
	"collections-cloud/internal/observability/metrics"
	"collections-cloud/internal/sweep/notify"
)

// Result summarizes one sweep run for a tenant.
type Result struct {
	TenantID  string
	Scanned   int
	Overdue   int
	Defaulted int
	CreditIDs []string
}

// Sweeper scans open credits and marks those past the grace threshold as
// defaulted. On hold credits are counted but never transitioned.
type Sweeper struct {
	credits  credits.CreditRepository
	payments credits.PaymentRepository
	clock    credits.Clock
	config   Config
	notifier notify.Notifier
	logger   *log.Logger
}

// NewSweeper constructs a sweeper.
func NewSweeper(creditRepo credits.CreditRepository, paymentRepo credits.PaymentRepository, clock credits.Clock, config Config, notifier notify.Notifier, logger *log.Logger) (*Sweeper, error) {
	if creditRepo == nil {
		return nil, errors.New("sweeper: nil credit repo")
	}
	if paymentRepo == nil {
		return nil, errors.New("sweeper: nil payment repo")
	}
	if clock == nil {
		clock = credits.SystemClock{}
	}
	return &Sweeper{
		credits:  creditRepo,
		payments: paymentRepo,
		clock:    clock,
		config:   config,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Run sweeps a single tenant.
func (s *Sweeper) Run(ctx context.Context, tenantID string) (Result, error) {
	start := time.Now()
	outcome := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSweepRun(outcome, time.Since(start))
	}()

	result := Result{TenantID: tenantID}
	now := s.clock.Now()
	list, err := s.credits.ListByTenant(ctx, tenantID, credits.CreditFilter{OpenOnly: true})
	if err != nil {
		outcome = metrics.ResultError
		return result, err
	}

	for i := range list {
		credit := &list[i]
		result.Scanned++

		var history []credits.Payment
		if credit.PaidInstallments == nil {
			history, err = s.payments.ListByCredit(ctx, credit.ID)
			if err != nil {
				outcome = metrics.ResultError
				return result, err
			}
		}
		expected := credits.ExpectedInstallments(credit, now)
		completed := credits.CompletedInstallments(credit, history)
		if expected <= completed {
			continue
		}
		result.Overdue++

		if credit.Status != credits.StatusActive {
			continue
		}
		if expected-completed <= s.config.GraceInstallments {
			continue
		}
		if !s.config.DryRun {
			if err := s.credits.UpdateStatus(ctx, credit.ID, credits.StatusDefaulted, now); err != nil {
				outcome = metrics.ResultError
				return result, err
			}
		}
		result.Defaulted++
		result.CreditIDs = append(result.CreditIDs, credit.ID)
		if s.logger != nil {
			s.logger.Printf("sweep: credit defaulted tenant=%s credit=%s behind=%d", tenantID, credit.ID, expected-completed)
		}
	}

	metrics.AddSweepDefaults(result.Defaulted)
	s.notifyResult(ctx, now, result)
	return result, nil
}

// RunAll sweeps every configured tenant. Per-tenant failures are logged
// and do not stop the remaining tenants.
func (s *Sweeper) RunAll(ctx context.Context) []Result {
	results := make([]Result, 0, len(s.config.Tenants))
	for _, tenantID := range s.config.Tenants {
		if tenantID == "" {
			continue
		}
		result, err := s.Run(ctx, tenantID)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("sweep error: tenant=%s err=%v", tenantID, err)
			}
			continue
		}
		results = append(results, result)
	}
	return results
}

func (s *Sweeper) notifyResult(ctx context.Context, runAt time.Time, result Result) {
	if s.notifier == nil || result.Defaulted == 0 {
		return
	}
	err := s.notifier.Notify(ctx, notify.AlertMessage{
		TenantID:  result.TenantID,
		RunAt:     runAt.Format(time.RFC3339),
		Scanned:   result.Scanned,
		Overdue:   result.Overdue,
		Defaulted: result.Defaulted,
		CreditIDs: result.CreditIDs,
		DryRun:    s.config.DryRun,
	})
	if err != nil && s.logger != nil {
		s.logger.Printf("sweep notify error: tenant=%s err=%v", result.TenantID, err)
	}
}
