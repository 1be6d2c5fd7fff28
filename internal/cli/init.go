// Package cli provides the initialization steps of cmd/moneylog.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moneylog/internal/config"
	"moneylog/internal/core"
	"moneylog/internal/ledger"
	applog "moneylog/internal/log"
	"moneylog/internal/session"
)

// SetupLogger builds the application logger at level and installs it as
// the slog default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitSession builds the ledger, seeded with the variant's sample data when
// enabled, and the session around it.
func InitSession(cfg *config.Config, loc *time.Location, now func() time.Time, logger *applog.Logger) (*session.Session, error) {
	variant := ledger.Variant(cfg.Variant)
	if !variant.IsValid() {
		return nil, fmt.Errorf("invalid variant %q", cfg.Variant)
	}
	if now == nil {
		now = time.Now
	}

	opts := []ledger.Option{ledger.WithLocation(loc), ledger.WithClock(now)}
	if cfg.SeedSampleData {
		opts = append(opts, ledger.WithTransactions(ledger.SampleTransactions(now().In(loc), variant)))
	}
	l := ledger.New(opts...)

	s := session.New(variant, l,
		session.WithBudget(core.Yen(cfg.MonthlyBudget)),
		session.WithLogger(logger),
	)

	logger.Info("Session initialized", applog.NewFields().
		WithOperation(applog.OpStartup).
		WithVariant(string(variant)).
		ToSlice()...)
	logger.Debug("Ledger seeded", "transactions", l.Len(), applog.FieldBudget, cfg.MonthlyBudget)
	return s, nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
