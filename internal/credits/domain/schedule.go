package credits

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clock provides time for schedule computations.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ExpectedInstallments returns how many installment periods have elapsed from
// the credit's start date up to and including asOf, counting the first period
// as installment 1. A credit whose start date is after asOf has accrued
// nothing and yields 0. The result is not capped by total_installments: a
// credit past its planned term keeps accruing until it is closed.
func ExpectedInstallments(credit *Credit, asOf time.Time) int {
	if credit == nil {
		return 0
	}
	start := truncateToDay(credit.StartDate)
	ref := truncateToDay(asOf)
	if start.IsZero() || ref.Before(start) {
		return 0
	}

	switch credit.Frequency {
	case FrequencyWeekly:
		return daysBetween(start, ref)/7 + 1
	case FrequencyBiweekly:
		return daysBetween(start, ref)/14 + 1
	case FrequencyMonthly:
		return (ref.Year()-start.Year())*12 + int(ref.Month()) - int(start.Month()) + 1
	case FrequencyYearly:
		return ref.Year() - start.Year() + 1
	default:
		// daily, custom and any unrecognized value accrue per day.
		return daysBetween(start, ref) + 1
	}
}

// CompletedInstallments returns the number of fully satisfied installment
// slots. When the denormalized paid_installments counter is present it is
// authoritative and short-circuits derivation from payment history.
// Otherwise settled payments are grouped by installment number and a slot
// counts as completed once its accumulated amount reaches the credit's
// installment amount. Without a positive installment amount no slot can be
// proven complete and the result is 0.
func CompletedInstallments(credit *Credit, payments []Payment) int {
	if credit == nil {
		return 0
	}
	if credit.PaidInstallments != nil {
		return *credit.PaidInstallments
	}
	return DerivedCompletedInstallments(credit, payments)
}

// DerivedCompletedInstallments derives the completed count from payment
// history alone, ignoring the paid_installments counter. The payment
// recording workflow uses it to refresh the counter after a new payment.
func DerivedCompletedInstallments(credit *Credit, payments []Payment) int {
	if credit == nil || !credit.HasInstallmentAmount() {
		return 0
	}

	sums := make(map[int]decimal.Decimal)
	for _, payment := range payments {
		if !payment.Status.Settled() {
			continue
		}
		sums[payment.InstallmentNumber] = sums[payment.InstallmentNumber].Add(payment.Amount)
	}

	completed := 0
	for _, sum := range sums {
		if sum.GreaterThanOrEqual(*credit.InstallmentAmount) {
			completed++
		}
	}
	return completed
}

// IsOverdue reports whether fewer installments have been completed than the
// schedule implies should have been by asOf.
func IsOverdue(credit *Credit, payments []Payment, asOf time.Time) bool {
	expected := ExpectedInstallments(credit, asOf)
	if expected == 0 {
		return false
	}
	return expected > CompletedInstallments(credit, payments)
}

// OverdueAmount returns the monetary value of missed installments as of the
// reference instant: (expected - completed) * installment_amount. Credits
// without an installment amount cannot quantify delinquency and yield zero
// regardless of the overdue flag.
func OverdueAmount(credit *Credit, payments []Payment, asOf time.Time) decimal.Decimal {
	if credit == nil || !credit.HasInstallmentAmount() {
		return decimal.Zero
	}
	expected := ExpectedInstallments(credit, asOf)
	completed := CompletedInstallments(credit, payments)
	if completed >= expected {
		return decimal.Zero
	}
	return credit.InstallmentAmount.Mul(decimal.NewFromInt(int64(expected - completed)))
}

// PendingInstallments returns how many installments remain against the
// planned term. A credit without total_installments cannot answer this and
// returns ErrMissingScheduleData instead of a number; zero would silently
// imply full repayment.
func PendingInstallments(credit *Credit, payments []Payment) (int, error) {
	if credit == nil {
		return 0, ErrNilCredit
	}
	if credit.TotalInstallments == nil {
		return 0, ErrMissingScheduleData
	}
	pending := *credit.TotalInstallments - CompletedInstallments(credit, payments)
	if pending < 0 {
		return 0, nil
	}
	return pending, nil
}

// ScheduleMetrics is the full derived schedule-adherence view of a credit.
// Pending is nil when the credit lacks total_installments.
type ScheduleMetrics struct {
	Expected      int
	Completed     int
	Pending       *int
	Overdue       bool
	OverdueAmount decimal.Decimal
}

// ComputeScheduleMetrics derives all schedule metrics in one pass. The
// computation is pure: identical credit, payments and asOf always yield
// identical metrics.
func ComputeScheduleMetrics(credit *Credit, payments []Payment, asOf time.Time) (ScheduleMetrics, error) {
	if credit == nil {
		return ScheduleMetrics{}, ErrNilCredit
	}
	metrics := ScheduleMetrics{
		Expected:      ExpectedInstallments(credit, asOf),
		Completed:     CompletedInstallments(credit, payments),
		OverdueAmount: OverdueAmount(credit, payments, asOf),
	}
	metrics.Overdue = metrics.Expected > 0 && metrics.Expected > metrics.Completed
	if pending, err := PendingInstallments(credit, payments); err == nil {
		metrics.Pending = &pending
	}
	return metrics, nil
}

func truncateToDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}
