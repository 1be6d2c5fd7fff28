// Package ledger holds the list of expense and income transactions and
// answers date-scoped and category-scoped aggregate queries over it.
//
// All queries are full scans. The collection is small and process-lifetime
// only; indexed month reports live in the storage package.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneylog/internal/core"
)

// daysPerBudgetMonth is the divisor used for the daily allowance.
const daysPerBudgetMonth = 30

// EventKind identifies a ledger mutation.
type EventKind string

const (
	Inserted EventKind = "inserted"
	Removed  EventKind = "removed"
)

// Event is delivered to subscribers after a mutation.
type Event struct {
	Kind        EventKind
	Transaction core.Transaction
}

// Ledger is the in-memory transaction list. It is safe for use from
// multiple goroutines; subscribers are invoked after the lock is released.
type Ledger struct {
	mu    sync.RWMutex
	items []core.Transaction

	loc *time.Location
	now func() time.Time

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLocation sets the calendar used for day and month boundaries.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithClock overrides the time source used for "today" and "this month".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithTransactions seeds the ledger.
func WithTransactions(txs []core.Transaction) Option {
	return func(l *Ledger) {
		l.items = append(l.items, txs...)
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		loc:  time.Local,
		now:  time.Now,
		subs: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Location returns the calendar location of the ledger.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Subscribe registers fn for every subsequent mutation and returns a
// function that removes it.
func (l *Ledger) Subscribe(fn func(Event)) (unsubscribe func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	return func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		delete(l.subs, id)
	}
}

func (l *Ledger) notify(ev Event) {
	l.subMu.Lock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.subs[id])
	}
	l.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Insert appends tx. Inputs are not validated.
func (l *Ledger) Insert(tx core.Transaction) {
	l.mu.Lock()
	l.items = append(l.items, tx)
	l.mu.Unlock()

	l.notify(Event{Kind: Inserted, Transaction: tx})
}

// Remove deletes the transaction with the given id. Unknown ids are ignored.
func (l *Ledger) Remove(id uuid.UUID) {
	l.mu.Lock()
	var (
		removed core.Transaction
		found   bool
	)
	kept := l.items[:0]
	for _, tx := range l.items {
		if tx.ID == id {
			removed, found = tx, true
			continue
		}
		kept = append(kept, tx)
	}
	l.items = kept
	l.mu.Unlock()

	if found {
		l.notify(Event{Kind: Removed, Transaction: removed})
	}
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id uuid.UUID) (core.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, tx := range l.items {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// All returns a copy of every transaction in insertion order.
func (l *Ledger) All() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Transaction(nil), l.items...)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Ledger) filter(keep func(core.Transaction) bool) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range l.items {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// TransactionsOnDate returns every transaction on day's calendar day,
// newest first.
func (l *Ledger) TransactionsOnDate(day time.Time) []core.Transaction {
	out := l.filter(func(tx core.Transaction) bool {
		return core.SameDay(tx.Date, day, l.loc)
	})
	sortNewestFirst(out)
	return out
}

// TotalOnDate sums the expenses on day's calendar day.
func (l *Ledger) TotalOnDate(day time.Time, opts ...QueryOption) core.Yen {
	q := buildQuery(opts)
	return sum(l.TransactionsOnDate(day), q)
}

// TransactionsInMonth returns every transaction sharing date's year and month.
func (l *Ledger) TransactionsInMonth(date time.Time) []core.Transaction {
	return l.filter(func(tx core.Transaction) bool {
		return core.SameMonth(tx.Date, date, l.loc)
	})
}

// TotalInMonth sums the expenses of date's month.
func (l *Ledger) TotalInMonth(date time.Time, opts ...QueryOption) core.Yen {
	q := buildQuery(opts)
	return sum(l.TransactionsInMonth(date), q)
}

// IncomeInMonth sums the income of date's month.
func (l *Ledger) IncomeInMonth(date time.Time) core.Yen {
	var total core.Yen
	for _, tx := range l.TransactionsInMonth(date) {
		if tx.IsIncome {
			total += tx.Amount
		}
	}
	return total
}

// BalanceInMonth is income minus expense for date's month.
func (l *Ledger) BalanceInMonth(date time.Time) core.Yen {
	return l.IncomeInMonth(date) - l.TotalInMonth(date)
}

// CategoryBreakdown returns per-category expense totals for date's month,
// largest first. Categories without spending are omitted.
func (l *Ledger) CategoryBreakdown(date time.Time) []core.CategoryAmount {
	totals := make(map[core.Category]core.Yen)
	for _, tx := range l.TransactionsInMonth(date) {
		if tx.IsIncome {
			continue
		}
		totals[tx.Category] += tx.Amount
	}

	out := make([]core.CategoryAmount, 0, len(totals))
	for c, amount := range totals {
		if amount == 0 {
			continue
		}
		out = append(out, core.CategoryAmount{Category: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category.Order() < out[j].Category.Order()
	})
	return out
}

// MonthOverview summarises a calendar month.
func (l *Ledger) MonthOverview(year, month int) core.MonthOverview {
	date := time.Date(year, time.Month(month), 1, 12, 0, 0, 0, l.loc)
	return core.MonthOverview{
		Year:       year,
		Month:      month,
		Total:      l.TotalInMonth(date),
		Income:     l.IncomeInMonth(date),
		ByCategory: l.CategoryBreakdown(date),
	}
}

// Today returns today's transactions, newest first.
func (l *Ledger) Today() []core.Transaction {
	return l.TransactionsOnDate(l.now())
}

// TodayTotal sums today's expenses.
func (l *Ledger) TodayTotal() core.Yen {
	return l.TotalOnDate(l.now())
}

// BudgetProgress is this month's spending as a fraction of budget, clamped
// to 1. A non-positive budget yields 0.
func (l *Ledger) BudgetProgress(budget core.Yen) float64 {
	if budget <= 0 {
		return 0
	}
	return ratio(l.TotalInMonth(l.now()), budget)
}

// BudgetRemaining may be negative when the budget is exceeded.
func (l *Ledger) BudgetRemaining(budget core.Yen) core.Yen {
	return budget - l.TotalInMonth(l.now())
}

// DailyBudget is the monthly budget spread over a 30-day month.
func (l *Ledger) DailyBudget(budget core.Yen) core.Yen {
	return budget / daysPerBudgetMonth
}

// DailyBudgetProgress is today's spending against the daily allowance,
// clamped to 1.
func (l *Ledger) DailyBudgetProgress(budget core.Yen) float64 {
	daily := l.DailyBudget(budget)
	if daily <= 0 {
		return 0
	}
	return ratio(l.TodayTotal(), daily)
}

// GroupedByDate buckets every transaction by calendar day, newest day first.
// Transactions inside a day are newest first.
func (l *Ledger) GroupedByDate() []core.DayGroup {
	byDay := make(map[time.Time][]core.Transaction)
	for _, tx := range l.All() {
		day := core.StartOfDay(tx.Date, l.loc)
		byDay[day] = append(byDay[day], tx)
	}

	out := make([]core.DayGroup, 0, len(byDay))
	for day, txs := range byDay {
		sortNewestFirst(txs)
		out = append(out, core.DayGroup{Date: day, Transactions: txs})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func ratio(spent, budget core.Yen) float64 {
	r := float64(spent) / float64(budget)
	if r > 1 {
		return 1
	}
	return r
}

func sum(txs []core.Transaction, q query) core.Yen {
	var total core.Yen
	for _, tx := range txs {
		if tx.IsIncome && !q.includeIncome {
			continue
		}
		total += tx.Amount
	}
	return total
}

func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}
