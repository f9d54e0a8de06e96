package notify

import "context"

// AlertMessage summarizes a sweep run for operators.
type AlertMessage struct {
	TenantID  string
	RunAt     string
	Scanned   int
	Overdue   int
	Defaulted int
	CreditIDs []string
	DryRun    bool
}

// Notifier sends sweep alerts.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
}
