package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

var (
	_ ports.ResultRepository    = ResultRepo{}
	_ ports.AnalyticsRepository = AnalyticsRepo{}
	_ ports.TxManager           = TxManager{}
)

func TestResultRepo_ListRecentNewestFirst(t *testing.T) {
	store := NewStore()
	repo := NewResultRepo(store)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		err := repo.Save(ctx, ports.GameResultRecord{
			SessionID:  id,
			FinishedAt: time.Unix(int64(i), 0),
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	records, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].SessionID != "c" || records[1].SessionID != "b" {
		t.Fatalf("unexpected order %+v", records)
	}
}

func TestAnalyticsRepo_RoundTripAndNotFound(t *testing.T) {
	store := NewStore()
	repo := NewAnalyticsRepo(store)
	ctx := context.Background()

	if _, err := repo.ListBySessionID(ctx, "absent", 5); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	events := []game.AnalyticsEvent{{Name: "start"}, {Name: "finish"}}
	if err := repo.Append(ctx, "s-1", events); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := repo.ListBySessionID(ctx, "s-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "start" {
		t.Fatalf("journal mangled: %+v", got)
	}
}

func TestTxManager_PropagatesError(t *testing.T) {
	store := NewStore()
	tm := NewTxManager(store)
	boom := errors.New("boom")
	err := tm.RunInTx(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
