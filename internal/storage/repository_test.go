package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
)

var jst = time.FixedZone("JST", 9*3600)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := NewSQLiteRepository(name, jst)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func at(month, day, hour int) time.Time {
	return time.Date(2025, time.Month(month), day, hour, 0, 0, 0, jst)
}

func TestInsertAndListByDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	early := core.NewTransaction(580, core.Food, "ランチ", at(6, 15, 12))
	late := core.NewTransaction(490, core.Cafe, "スタバ", at(6, 15, 16))
	other := core.NewTransaction(160, core.Transport, "電車", at(6, 14, 8))
	for _, tx := range []core.Transaction{early, late, other} {
		if err := repo.Insert(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := repo.ListByDay(ctx, at(6, 15, 0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != late.ID || got[1].ID != early.ID {
		t.Fatalf("unexpected day listing %+v", got)
	}
	if !got[0].Date.Equal(late.Date) || got[0].Memo != "スタバ" || got[0].Category != core.Cafe {
		t.Fatalf("round trip lost data: %+v", got[0])
	}

	// Re-inserting the same id replaces the row.
	if err := repo.Insert(ctx, early); err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}

	if err := repo.Delete(ctx, early.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, early.ID); err != nil {
		t.Fatalf("second delete must succeed: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestReadMonthOverview(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	txs := []core.Transaction{
		core.NewTransaction(580, core.Food, "", at(6, 15, 12)),
		core.NewTransaction(1200, core.Food, "", at(6, 14, 19)),
		core.NewTransaction(160, core.Transport, "", at(6, 15, 8)),
		core.NewTransaction(85000, core.PartTime, "", at(6, 1, 10)),
		core.NewTransaction(3000, core.Shopping, "", at(5, 31, 12)),
	}
	if err := repo.ReplaceAll(ctx, txs); err != nil {
		t.Fatalf("replace: %v", err)
	}

	ov, err := repo.ReadMonthOverview(ctx, 2025, 6)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Total != 1940 || ov.Income != 85000 {
		t.Fatalf("unexpected totals %+v", ov)
	}
	want := []core.CategoryAmount{{Category: core.Food, Amount: 1780}, {Category: core.Transport, Amount: 160}}
	if len(ov.ByCategory) != len(want) || ov.ByCategory[0] != want[0] || ov.ByCategory[1] != want[1] {
		t.Fatalf("unexpected breakdown %+v", ov.ByCategory)
	}

	empty, err := repo.ReadMonthOverview(ctx, 2024, 1)
	if err != nil {
		t.Fatalf("empty overview: %v", err)
	}
	if empty.Total != 0 || empty.Income != 0 || len(empty.ByCategory) != 0 {
		t.Fatalf("expected empty overview, got %+v", empty)
	}
}

func TestMirrorFollowsLedger(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := func() time.Time { return at(6, 15, 12) }
	seed := core.NewTransaction(850, core.Food, "", at(6, 15, 9))
	l := ledger.New(ledger.WithLocation(jst), ledger.WithClock(now), ledger.WithTransactions([]core.Transaction{seed}))

	stop, err := repo.Mirror(ctx, l, nil)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}

	added := core.NewTransaction(350, core.Cafe, "", at(6, 15, 10))
	l.Insert(added)
	l.Remove(seed.ID)

	ov, err := repo.ReadMonthOverview(ctx, 2025, 6)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Total != 350 {
		t.Fatalf("expected mirrored total 350, got %d", ov.Total)
	}
	if want := l.MonthOverview(2025, 6); want.Total != ov.Total || len(want.ByCategory) != len(ov.ByCategory) {
		t.Fatalf("mirror diverged from ledger: %+v vs %+v", ov, want)
	}

	stop()
	l.Insert(core.NewTransaction(999, core.Food, "", at(6, 15, 11)))
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("expected mirror to stop, got %d rows", n)
	}
}

func TestMirrorKeepsInsertsDuringInitialCopy(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := core.NewTransaction(850, core.Food, "", at(6, 15, 9))
	l := ledger.New(ledger.WithLocation(jst), ledger.WithTransactions([]core.Transaction{seed}))

	late := core.NewTransaction(420, core.Cafe, "", at(6, 15, 10))
	repo.afterSnapshot = func() { l.Insert(late) }

	stop, err := repo.Mirror(ctx, l, nil)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	defer stop()

	if n, _ := repo.Count(ctx); n != 2 {
		t.Fatalf("expected 2 mirrored rows, got %d", n)
	}
	day, err := repo.ListByDay(ctx, at(6, 15, 0))
	if err != nil {
		t.Fatalf("list by day: %v", err)
	}
	found := false
	for _, tx := range day {
		if tx.ID == late.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("insert raised during the initial copy is missing: %+v", day)
	}
}

func TestSeparateNamesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a, err := NewSQLiteRepository("isolation_a", jst)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()
	b, err := NewSQLiteRepository("isolation_b", jst)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	if err := a.Insert(ctx, core.NewTransaction(100, core.Food, "", at(6, 1, 9))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n, _ := b.Count(ctx); n != 0 {
		t.Fatalf("expected isolated databases, got %d rows in b", n)
	}
	if err := a.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
