// Package storage mirrors the ledger into an in-memory SQLite database with
// day and month indexes, and serves month reports from it.
//
// The database lives only as long as the process; nothing is written to disk.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
	applog "moneylog/internal/log"

	_ "modernc.org/sqlite"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"

	mirrorTimeout = 5 * time.Second
)

type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location

	// afterSnapshot runs between the ledger snapshot and the initial copy
	// in Mirror. Tests use it to raise events mid-copy.
	afterSnapshot func()
}

// MemoryDSN names a shared-cache in-memory database.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// NewSQLiteRepository opens the in-memory database called name and applies
// the schema. Day and month columns are computed in loc.
func NewSQLiteRepository(name string, loc *time.Location) (*SQLiteRepository, error) {
	if loc == nil {
		loc = time.Local
	}
	dsn := MemoryDSN(name)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A shared-cache memory database disappears with its last connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, loc: loc}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert stores tx, replacing any row with the same id.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) error {
	local := tx.Date.In(r.loc)
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO transactions
			(id, amount, category, memo, occurred_at, local_day, local_month, is_income)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID.String(),
		int64(tx.Amount),
		string(tx.Category),
		tx.Memo,
		tx.Date.UnixNano(),
		local.Format(dayLayout),
		local.Format(monthLayout),
		boolToInt(tx.IsIncome),
	)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

// Delete removes the row with id. Missing rows are not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// ReplaceAll swaps the table contents for txs in one transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions
			(id, amount, category, memo, occurred_at, local_day, local_month, is_income)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		local := tx.Date.In(r.loc)
		if _, err := stmt.ExecContext(ctx,
			tx.ID.String(), int64(tx.Amount), string(tx.Category), tx.Memo,
			tx.Date.UnixNano(), local.Format(dayLayout), local.Format(monthLayout),
			boolToInt(tx.IsIncome),
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of mirrored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// ListByDay returns the transactions of day's calendar day, newest first.
func (r *SQLiteRepository) ListByDay(ctx context.Context, day time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, category, memo, occurred_at, is_income
		FROM transactions
		WHERE local_day = ?
		ORDER BY occurred_at DESC`,
		day.In(r.loc).Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("list transactions by day: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			id, category, memo string
			amount, occurred   int64
			income             int
		)
		if err := rows.Scan(&id, &amount, &category, &memo, &occurred, &income); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse transaction id %q: %w", id, err)
		}
		out = append(out, core.Transaction{
			ID:       parsed,
			Amount:   core.Yen(amount),
			Category: core.Category(category),
			Memo:     memo,
			Date:     time.Unix(0, occurred).In(r.loc),
			IsIncome: income != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ReadMonthOverview returns expense total, income and the category
// breakdown for a calendar month.
func (r *SQLiteRepository) ReadMonthOverview(ctx context.Context, year int, month int) (core.MonthOverview, error) {
	overview := core.MonthOverview{Year: year, Month: month}
	key := fmt.Sprintf("%04d-%02d", year, month)

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN is_income = 0 THEN amount END), 0),
			COALESCE(SUM(CASE WHEN is_income = 1 THEN amount END), 0)
		FROM transactions
		WHERE local_month = ?`, key).Scan(&overview.Total, &overview.Income)
	if err != nil {
		return overview, fmt.Errorf("get month totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount) AS total
		FROM transactions
		WHERE local_month = ? AND is_income = 0
		GROUP BY category
		HAVING total > 0`, key)
	if err != nil {
		return overview, fmt.Errorf("get category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			total    int64
		)
		if err := rows.Scan(&category, &total); err != nil {
			return overview, fmt.Errorf("scan category sum: %w", err)
		}
		overview.ByCategory = append(overview.ByCategory, core.CategoryAmount{
			Category: core.Category(category),
			Amount:   core.Yen(total),
		})
	}
	if err := rows.Err(); err != nil {
		return overview, fmt.Errorf("iterate category sums: %w", err)
	}

	sort.Slice(overview.ByCategory, func(i, j int) bool {
		a, b := overview.ByCategory[i], overview.ByCategory[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category.Order() < b.Category.Order()
	})
	return overview, nil
}

// Mirror copies the current ledger contents and keeps the table in step
// with later inserts and removals. Events raised while the initial copy is
// written are queued and replayed after it. Failures are logged; the ledger
// remains the source of truth.
func (r *SQLiteRepository) Mirror(ctx context.Context, l *ledger.Ledger, logger *applog.Logger) (stop func(), err error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	apply := func(ev ledger.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()

		var err error
		switch ev.Kind {
		case ledger.Inserted:
			err = r.Insert(ctx, ev.Transaction)
		case ledger.Removed:
			err = r.Delete(ctx, ev.Transaction.ID)
		}
		if err != nil {
			logger.ErrorContext(ctx, "Failed to mirror ledger event", applog.NewFields().
				WithOperation(applog.OpMirror).
				WithTransaction(ev.Transaction.ID.String(), int64(ev.Transaction.Amount), ev.Transaction.Category.String(), ev.Transaction.IsIncome).
				WithError(err).
				ToSlice()...)
		}
	}

	var (
		mu      sync.Mutex
		ready   bool
		pending []ledger.Event
	)
	unsubscribe := l.Subscribe(func(ev ledger.Event) {
		mu.Lock()
		defer mu.Unlock()
		if !ready {
			pending = append(pending, ev)
			return
		}
		apply(ev)
	})

	snapshot := l.All()
	if r.afterSnapshot != nil {
		r.afterSnapshot()
	}
	if err := r.ReplaceAll(ctx, snapshot); err != nil {
		unsubscribe()
		return nil, fmt.Errorf("initial mirror: %w", err)
	}

	mu.Lock()
	ready = true
	for _, ev := range pending {
		apply(ev)
	}
	replayed := len(pending)
	pending = nil
	mu.Unlock()

	rows, err := r.Count(ctx)
	if err != nil {
		unsubscribe()
		return nil, fmt.Errorf("count mirrored rows: %w", err)
	}
	logger.InfoContext(ctx, "Ledger mirrored to SQLite", "transactions", rows, "replayed_events", replayed)
	return unsubscribe, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
