package backend

import (
	"context"
	"time"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
)

// Reports answers day and month report queries for the presentation layer.
type Reports interface {
	// ReadMonthOverview returns totals for a specific year and month.
	ReadMonthOverview(ctx context.Context, year int, month int) (core.MonthOverview, error)
	// ListByDay returns the transactions of day's calendar day, newest first.
	ListByDay(ctx context.Context, day time.Time) ([]core.Transaction, error)
}

// Pinger is implemented by backends that can report their readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Reports Reports
	Cleanup CleanupFunc
}

// Factory creates report backends over a ledger.
type Factory interface {
	CreateBackend(ctx context.Context, config Config, l *ledger.Ledger) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific: name of the in-memory database
	SQLiteName string

	// Calendar used for day and month boundaries
	Location *time.Location
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
