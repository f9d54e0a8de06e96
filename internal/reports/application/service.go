package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"collections-cloud/internal/auth"
	credits "collections-cloud/internal/credits/domain"
	"collections-cloud/internal/observability/metrics"
)

// PortfolioRow is one open credit with its derived schedule metrics.
type PortfolioRow struct {
	CreditID      string
	ClientID      string
	CollectorID   string
	Status        credits.Status
	Frequency     credits.Frequency
	Balance       decimal.Decimal
	Expected      int
	Completed     int
	Pending       *int
	Overdue       bool
	OverdueAmount decimal.Decimal
}

// PortfolioTotals aggregates a portfolio report.
type PortfolioTotals struct {
	OpenCredits    int
	OverdueCredits int
	Balance        decimal.Decimal
	OverdueAmount  decimal.Decimal
}

// PortfolioReport is a tenant-wide delinquency snapshot, optionally
// narrowed to a single collector.
type PortfolioReport struct {
	TenantID    string
	CollectorID string
	AsOf        time.Time
	Rows        []PortfolioRow
	Totals      PortfolioTotals
}

// ReportService builds portfolio reports from stored credits.
type ReportService struct {
	credits  credits.CreditRepository
	payments credits.PaymentRepository
	clock    credits.Clock
	tenantID string
}

// NewReportService constructs a service.
func NewReportService(creditRepo credits.CreditRepository, paymentRepo credits.PaymentRepository, clock credits.Clock, tenantID string) (*ReportService, error) {
	if creditRepo == nil {
		return nil, errors.New("report service: nil credit repo")
	}
	if paymentRepo == nil {
		return nil, errors.New("report service: nil payment repo")
	}
	if clock == nil {
		clock = credits.SystemClock{}
	}
	return &ReportService{credits: creditRepo, payments: paymentRepo, clock: clock, tenantID: tenantID}, nil
}

// BuildPortfolio derives schedule metrics for every open credit of the
// tenant. A zero asOf means "now" per the service clock.
func (s *ReportService) BuildPortfolio(ctx context.Context, collectorID string, asOf time.Time) (*PortfolioReport, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportBuild(result, time.Since(start))
	}()

	tenantID := s.resolveTenant(ctx)
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	list, err := s.credits.ListByTenant(ctx, tenantID, credits.CreditFilter{
		CollectorID: collectorID,
		OpenOnly:    true,
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	report := &PortfolioReport{
		TenantID:    tenantID,
		CollectorID: collectorID,
		AsOf:        asOf,
		Rows:        make([]PortfolioRow, 0, len(list)),
		Totals: PortfolioTotals{
			Balance:       decimal.Zero,
			OverdueAmount: decimal.Zero,
		},
	}
	for i := range list {
		credit := &list[i]
		var history []credits.Payment
		if credit.PaidInstallments == nil {
			history, err = s.payments.ListByCredit(ctx, credit.ID)
			if err != nil {
				result = metrics.ResultError
				return nil, err
			}
		}
		computed, err := credits.ComputeScheduleMetrics(credit, history, asOf)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		row := PortfolioRow{
			CreditID:      credit.ID,
			ClientID:      credit.ClientID,
			CollectorID:   credit.CollectorID,
			Status:        credit.Status,
			Frequency:     credit.Frequency,
			Balance:       credit.Balance,
			Expected:      computed.Expected,
			Completed:     computed.Completed,
			Pending:       computed.Pending,
			Overdue:       computed.Overdue,
			OverdueAmount: computed.OverdueAmount,
		}
		report.Rows = append(report.Rows, row)
		report.Totals.OpenCredits++
		report.Totals.Balance = report.Totals.Balance.Add(credit.Balance)
		if row.Overdue {
			report.Totals.OverdueCredits++
			report.Totals.OverdueAmount = report.Totals.OverdueAmount.Add(row.OverdueAmount)
		}
	}
	return report, nil
}

func (s *ReportService) resolveTenant(ctx context.Context) string {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return s.tenantID
}
