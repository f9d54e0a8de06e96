package credits

import "errors"

var (
	// ErrMissingScheduleData indicates total_installments is unset, so
	// pending installments cannot be computed. Callers must surface this
	// explicitly rather than reporting zero.
	ErrMissingScheduleData = errors.New("credits: missing schedule data")

	// ErrCreditNotFound indicates the credit does not exist.
	ErrCreditNotFound = errors.New("credits: credit not found")

	// ErrPaymentNotFound indicates the payment does not exist.
	ErrPaymentNotFound = errors.New("credits: payment not found")

	// ErrNilCredit indicates a nil credit was passed to a computation.
	ErrNilCredit = errors.New("credits: nil credit")
)
