package collectors

import (
	"errors"
	"time"
)

var (
	// ErrCollectorNotFound indicates the collector does not exist.
	ErrCollectorNotFound = errors.New("collectors: collector not found")
	// ErrEmptyName indicates a collector without a name.
	ErrEmptyName = errors.New("collectors: empty name")
)

// Collector represents a cobrador: the field agent responsible for a set of
// clients and the credits granted to them.
type Collector struct {
	ID        string
	TenantID  string
	Name      string
	Phone     string
	Zone      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
