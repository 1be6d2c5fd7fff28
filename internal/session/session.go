// Package session owns the ledger, the progression engine and the monthly
// budget for one running app, and applies the save/delete flow of the
// entry form.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
	applog "moneylog/internal/log"
	"moneylog/internal/progression"
)

// DefaultMonthlyBudget is the budget both variants ship with.
const DefaultMonthlyBudget core.Yen = 80000

var (
	ErrDeleteUnsupported = errors.New("delete is not available in the gamified variant")
	ErrInvalidBudget     = errors.New("budget must be positive")
)

// Entry is what the entry form submits.
type Entry struct {
	Amount   core.Yen
	Category core.Category
	Memo     string
	Date     time.Time // zero means now
}

// SaveResult reports the stored transaction and, in the gamified variant,
// the progression outcome.
type SaveResult struct {
	Transaction core.Transaction
	Progress    *progression.Outcome
}

// Session is the top-level state container handed to presenters.
type Session struct {
	variant ledger.Variant
	ledger  *ledger.Ledger
	engine  *progression.Engine
	logger  *applog.Logger
	now     func() time.Time

	mu     sync.Mutex
	budget core.Yen

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// Option configures a Session.
type Option func(*Session)

// WithBudget sets the initial monthly budget.
func WithBudget(budget core.Yen) Option {
	return func(s *Session) {
		if budget > 0 {
			s.budget = budget
		}
	}
}

// WithEngine replaces the sample progression engine.
func WithEngine(e *progression.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l.WithComponent(applog.ComponentSession)
		}
	}
}

// New builds a session around l. The gamified variant gets the sample
// progression engine unless WithEngine is given.
func New(variant ledger.Variant, l *ledger.Ledger, opts ...Option) *Session {
	s := &Session{
		variant: variant,
		ledger:  l,
		budget:  DefaultMonthlyBudget,
		logger:  applog.Discard(),
		now:     l.Now,
		subs:    make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if variant == ledger.Gamified && s.engine == nil {
		s.engine = progression.NewSampleEngine()
	}
	return s
}

func (s *Session) Variant() ledger.Variant {
	return s.variant
}

func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// Progression returns the engine, or nil in the standard variant.
func (s *Session) Progression() *progression.Engine {
	if s.variant != ledger.Gamified {
		return nil
	}
	return s.engine
}

// Gamified reports whether progression is enabled.
func (s *Session) Gamified() bool {
	return s.variant == ledger.Gamified
}

// CanDelete reports whether entries may be removed in this variant.
func (s *Session) CanDelete() bool {
	return s.variant == ledger.Standard
}

// Save validates the entry, appends it to the ledger and, when progression
// is enabled, records it.
func (s *Session) Save(e Entry) (SaveResult, error) {
	tx := core.NewTransaction(e.Amount, e.Category, e.Memo, e.Date)
	if e.Date.IsZero() {
		tx.Date = s.now()
	}
	if err := tx.Validate(); err != nil {
		return SaveResult{}, fmt.Errorf("validate entry: %w", err)
	}

	s.mu.Lock()
	s.ledger.Insert(tx)
	result := SaveResult{Transaction: tx}
	if s.Gamified() {
		out := s.engine.RecordEntry()
		result.Progress = &out
	}
	s.mu.Unlock()

	s.logger.Info("Entry saved", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithTransaction(tx.ID.String(), int64(tx.Amount), tx.Category.String(), tx.IsIncome).
		ToSlice()...)

	s.notify(Event{Kind: EntrySaved, Transaction: &tx})
	if p := result.Progress; p != nil {
		if p.LevelsGained > 0 {
			s.logger.Info("Level up", applog.NewFields().
				WithProgression(p.Snapshot.Level, p.Snapshot.CurrentXP, p.Snapshot.Streak).
				ToSlice()...)
			s.notify(Event{Kind: LevelUp, Progress: &p.Snapshot})
		}
		for _, id := range p.Unlocked {
			s.logger.Info("Achievement unlocked", applog.FieldAchievement, id)
			s.notify(Event{Kind: AchievementUnlocked, Achievement: id, Progress: &p.Snapshot})
		}
	}
	return result, nil
}

// Delete removes an entry. Unknown ids are a no-op; the gamified variant
// refuses with ErrDeleteUnsupported.
func (s *Session) Delete(id uuid.UUID) error {
	if !s.CanDelete() {
		return ErrDeleteUnsupported
	}

	s.mu.Lock()
	tx, found := s.ledger.Get(id)
	s.ledger.Remove(id)
	s.mu.Unlock()

	if !found {
		s.logger.Debug("Delete of unknown entry ignored", applog.FieldTransactionID, id.String())
		return nil
	}
	s.logger.Info("Entry deleted", applog.NewFields().
		WithOperation(applog.OpDelete).
		WithTransaction(tx.ID.String(), int64(tx.Amount), tx.Category.String(), tx.IsIncome).
		ToSlice()...)
	s.notify(Event{Kind: EntryDeleted, Transaction: &tx})
	return nil
}

func (s *Session) Budget() core.Yen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

// SetBudget replaces the monthly budget.
func (s *Session) SetBudget(budget core.Yen) error {
	if budget <= 0 {
		return ErrInvalidBudget
	}
	s.mu.Lock()
	s.budget = budget
	s.mu.Unlock()

	s.logger.Info("Budget changed", applog.FieldOperation, applog.OpUpdate, applog.FieldBudget, int64(budget))
	s.notify(Event{Kind: BudgetChanged, Budget: budget})
	return nil
}

// BudgetStatus is the budget card of the home screen.
type BudgetStatus struct {
	Budget        core.Yen
	Spent         core.Yen
	Remaining     core.Yen
	Progress      float64
	DailyBudget   core.Yen
	TodaySpent    core.Yen
	DailyProgress float64
}

// BudgetStatus computes the current month's budget figures.
func (s *Session) BudgetStatus() BudgetStatus {
	budget := s.Budget()
	return BudgetStatus{
		Budget:        budget,
		Spent:         s.ledger.TotalInMonth(s.now()),
		Remaining:     s.ledger.BudgetRemaining(budget),
		Progress:      s.ledger.BudgetProgress(budget),
		DailyBudget:   s.ledger.DailyBudget(budget),
		TodaySpent:    s.ledger.TodayTotal(),
		DailyProgress: s.ledger.DailyBudgetProgress(budget),
	}
}

// Subscribe registers fn for session events.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) notify(ev Event) {
	ev.At = s.now()
	ev.Variant = s.variant

	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
