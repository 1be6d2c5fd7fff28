package backend

import (
	"context"
	"fmt"
	"time"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
	applog "moneylog/internal/log"
	"moneylog/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, l *ledger.Ledger) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("ledger is nil")
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config, l)
	case MemoryBackend:
		return f.createMemoryBackend(l)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config, l *ledger.Ledger) (*BackendResult, error) {
	loc := config.Location
	if loc == nil {
		loc = l.Location()
	}
	repo, err := storage.NewSQLiteRepository(config.SQLiteName, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	stop, err := repo.Mirror(ctx, l, f.logger)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to mirror ledger: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "database", config.SQLiteName)

	return &BackendResult{
		Reports: repo,
		Cleanup: func() error {
			stop()
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(l *ledger.Ledger) (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{
		Reports: LedgerReports{Ledger: l},
	}, nil
}

// LedgerReports serves reports by scanning the ledger.
type LedgerReports struct {
	Ledger *ledger.Ledger
}

func (r LedgerReports) ReadMonthOverview(_ context.Context, year int, month int) (core.MonthOverview, error) {
	return r.Ledger.MonthOverview(year, month), nil
}

func (r LedgerReports) ListByDay(_ context.Context, day time.Time) ([]core.Transaction, error) {
	return r.Ledger.TransactionsOnDate(day), nil
}
