package clients

import (
	"errors"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	// ErrClientNotFound indicates the client does not exist.
	ErrClientNotFound = errors.New("clients: client not found")
	// ErrEmptyName indicates a client without a name.
	ErrEmptyName = errors.New("clients: empty name")
)

// Client represents a borrower belonging to a tenant. CollectorID is the
// cobrador currently responsible for the client, empty when unassigned.
type Client struct {
	ID          string
	TenantID    string
	Name        string
	Document    string
	Phone       string
	Address     string
	CollectorID string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
