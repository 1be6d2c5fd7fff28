package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
	"moneylog/internal/progression"
	"moneylog/internal/session"
)

var jst = time.FixedZone("JST", 9*3600)

type recordingSender struct {
	mu   sync.Mutex
	msgs []*EventMessage
	fail bool
	got  chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{got: make(chan struct{}, 16)}
}

func (s *recordingSender) Publish(_ context.Context, msg *EventMessage) error {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.got <- struct{}{}
	if s.fail {
		return errors.New("broker unavailable")
	}
	return nil
}

func (s *recordingSender) wait(t *testing.T, n int) []*EventMessage {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i+1)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*EventMessage(nil), s.msgs...)
}

func newSession(variant ledger.Variant, opts ...session.Option) *session.Session {
	now := func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, jst) }
	l := ledger.New(ledger.WithLocation(jst), ledger.WithClock(now))
	return session.New(variant, l, opts...)
}

func TestPublisherForwardsSessionEvents(t *testing.T) {
	sender := newRecordingSender()
	p := NewPublisher(sender, nil)

	engine := progression.NewEngine(progression.State{Level: 1, CurrentXP: 90, Streak: 2}, progression.Catalog())
	s := newSession(ledger.Gamified, session.WithEngine(engine))
	detach := p.Attach(s)
	defer detach()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	res, err := s.Save(session.Entry{Amount: 580, Category: core.Food, Memo: "ランチ"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	msgs := sender.wait(t, 3)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if msgs[0].Kind != string(session.EntrySaved) || msgs[0].Variant != "gamified" {
		t.Fatalf("unexpected first message %+v", msgs[0])
	}
	if tx := msgs[0].Transaction; tx == nil || tx.ID != res.Transaction.ID.String() || tx.Amount != 580 || tx.Category != "food" {
		t.Fatalf("unexpected transaction payload %+v", msgs[0].Transaction)
	}
	if msgs[1].Kind != string(session.LevelUp) || msgs[1].Progress == nil || msgs[1].Progress.Level != 2 {
		t.Fatalf("unexpected level-up message %+v", msgs[1])
	}
	if msgs[2].Kind != string(session.AchievementUnlocked) || msgs[2].Achievement != progression.Streak3 {
		t.Fatalf("unexpected achievement message %+v", msgs[2])
	}
}

func TestPublisherSurvivesSendFailures(t *testing.T) {
	sender := newRecordingSender()
	sender.fail = true
	p := NewPublisher(sender, nil)

	s := newSession(ledger.Standard)
	p.Attach(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	if err := s.SetBudget(90000); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if err := s.SetBudget(70000); err != nil {
		t.Fatalf("set budget: %v", err)
	}

	msgs := sender.wait(t, 2)
	if msgs[1].Kind != string(session.BudgetChanged) || msgs[1].Budget != 70000 {
		t.Fatalf("expected second budget message, got %+v", msgs[1])
	}
}

func TestPublisherDropsWhenBufferFull(t *testing.T) {
	p := NewPublisher(newRecordingSender(), nil)
	s := newSession(ledger.Standard)
	p.Attach(s)

	for i := 0; i < publishBuffer+10; i++ {
		if err := s.SetBudget(core.Yen(1000 + i)); err != nil {
			t.Fatalf("set budget: %v", err)
		}
	}
	if got := len(p.queue); got != publishBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", publishBuffer, got)
	}
}

func TestEventMessageJSON(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tx := core.NewTransaction(85000, core.PartTime, "バイト代", at)
	msg := NewEventMessage(session.Event{Kind: session.EntrySaved, At: at, Variant: ledger.Standard, Transaction: &tx})

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := EventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("EventMessageFromJSON() error = %v", err)
	}
	if parsed.Kind != "entry.saved" || !parsed.OccurredAt.Equal(at) {
		t.Fatalf("unexpected parsed message %+v", parsed)
	}
	if parsed.Transaction == nil || !parsed.Transaction.IsIncome || parsed.Transaction.Memo != "バイト代" {
		t.Fatalf("unexpected transaction payload %+v", parsed.Transaction)
	}
	if parsed.Progress != nil {
		t.Fatalf("standard events carry no progress")
	}

	if _, err := EventMessageFromJSON([]byte(`{"kind": 12}`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
