package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
	"moneylog/internal/progression"
)

var jst = time.FixedZone("JST", 9*3600)

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, jst)
}

func newLedger(txs ...core.Transaction) *ledger.Ledger {
	return ledger.New(ledger.WithLocation(jst), ledger.WithClock(fixedNow), ledger.WithTransactions(txs))
}

func TestSaveStandardDoesNotTouchProgression(t *testing.T) {
	s := New(ledger.Standard, newLedger())
	if s.Progression() != nil {
		t.Fatalf("standard variant must not expose progression")
	}

	res, err := s.Save(Entry{Amount: 580, Category: core.Food, Memo: "ランチ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Progress != nil {
		t.Fatalf("unexpected progression outcome")
	}
	if !res.Transaction.Date.Equal(fixedNow()) {
		t.Fatalf("expected date to default to the session clock, got %v", res.Transaction.Date)
	}
	if s.Ledger().TodayTotal() != 580 {
		t.Fatalf("expected ledger to hold the entry")
	}
}

func TestSaveRejectsInvalidEntries(t *testing.T) {
	s := New(ledger.Standard, newLedger())
	cases := []struct {
		entry Entry
		want  error
	}{
		{Entry{Amount: 0, Category: core.Food}, core.ErrInvalidAmount},
		{Entry{Amount: -100, Category: core.Food}, core.ErrInvalidAmount},
		{Entry{Amount: 100, Category: "rent"}, core.ErrUnknownCategory},
	}
	for i, tc := range cases {
		if _, err := s.Save(tc.entry); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
	if s.Ledger().Len() != 0 {
		t.Fatalf("invalid entries must not be stored")
	}
}

func TestSaveGamifiedRecordsEntry(t *testing.T) {
	engine := progression.NewEngine(progression.State{Level: 1, CurrentXP: 90, Streak: 2}, progression.Catalog())
	s := New(ledger.Gamified, newLedger(), WithEngine(engine))

	var kinds []EventKind
	s.Subscribe(func(ev Event) {
		if ev.Variant != ledger.Gamified || ev.At.IsZero() {
			t.Errorf("event missing metadata: %+v", ev)
		}
		kinds = append(kinds, ev.Kind)
	})

	res, err := s.Save(Entry{Amount: 85000, Category: core.PartTime, Memo: "バイト代"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Transaction.IsIncome {
		t.Fatalf("income entry must be flagged")
	}
	if res.Progress == nil {
		t.Fatalf("expected progression outcome")
	}
	snap := res.Progress.Snapshot
	if snap.Level != 2 || snap.CurrentXP != 15 || snap.Streak != 3 {
		t.Fatalf("unexpected progression %+v", snap.State)
	}

	want := []EventKind{EntrySaved, LevelUp, AchievementUnlocked}
	if len(kinds) != len(want) {
		t.Fatalf("expected events %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, kinds)
		}
	}
}

func TestGamifiedDefaultsToSampleEngine(t *testing.T) {
	s := New(ledger.Gamified, newLedger())
	if s.Progression() == nil {
		t.Fatalf("gamified variant needs an engine")
	}
	if got := s.Progression().Snapshot().Level; got != 5 {
		t.Fatalf("expected sample level 5, got %d", got)
	}
}

func TestDelete(t *testing.T) {
	tx := core.NewTransaction(500, core.Food, "", fixedNow())
	s := New(ledger.Standard, newLedger(tx))

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := s.Delete(tx.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete(tx.ID); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}
	if err := s.Delete(uuid.New()); err != nil {
		t.Fatalf("unknown id must be a no-op, got %v", err)
	}
	if s.Ledger().Len() != 0 {
		t.Fatalf("expected empty ledger")
	}
	if len(events) != 1 || events[0].Kind != EntryDeleted || events[0].Transaction.ID != tx.ID {
		t.Fatalf("expected a single delete event, got %+v", events)
	}
}

func TestDeleteRefusedInGamifiedVariant(t *testing.T) {
	tx := core.NewTransaction(500, core.Food, "", fixedNow())
	s := New(ledger.Gamified, newLedger(tx))
	if s.CanDelete() {
		t.Fatalf("gamified variant must not allow delete")
	}
	if err := s.Delete(tx.ID); !errors.Is(err, ErrDeleteUnsupported) {
		t.Fatalf("expected ErrDeleteUnsupported, got %v", err)
	}
	if s.Ledger().Len() != 1 {
		t.Fatalf("entry must remain")
	}
}

func TestBudget(t *testing.T) {
	s := New(ledger.Standard, newLedger(
		core.NewTransaction(45000, core.Shopping, "", time.Date(2025, 6, 3, 10, 0, 0, 0, jst)),
		core.NewTransaction(1000, core.Food, "", fixedNow()),
	), WithBudget(92000))

	if s.Budget() != 92000 {
		t.Fatalf("expected initial budget 92000")
	}
	if err := s.SetBudget(0); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("expected ErrInvalidBudget, got %v", err)
	}
	if err := s.SetBudget(80000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := s.BudgetStatus()
	if st.Budget != 80000 || st.Spent != 46000 || st.Remaining != 34000 {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.Progress != 0.575 {
		t.Fatalf("expected progress 0.575, got %v", st.Progress)
	}
	if st.DailyBudget != 2666 || st.TodaySpent != 1000 {
		t.Fatalf("unexpected daily figures %+v", st)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New(ledger.Standard, newLedger())
	n := 0
	unsubscribe := s.Subscribe(func(Event) { n++ })
	_ = s.SetBudget(1000)
	unsubscribe()
	_ = s.SetBudget(2000)
	if n != 1 {
		t.Fatalf("expected one event before unsubscribe, got %d", n)
	}
}
