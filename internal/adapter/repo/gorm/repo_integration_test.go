package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MEVSBRAIN_DB_DSN")
	if dsn == "" {
		t.Skip("MEVSBRAIN_DB_DSN is required for integration test")
	}
	return dsn
}

func TestResultRepo_SaveAndListRecent(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, "../../../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sessionID := "it-result-roundtrip"
	_ = db.Exec("DELETE FROM game_results WHERE session_id = ?", sessionID).Error

	repo := NewResultRepo(db)
	record := ports.GameResultRecord{
		SessionID: sessionID,
		Summary:   game.Summary{Progress: 100, TimeLeft: 42.5, Focus: 61, Win: true},
		Epilogues: []game.Epilogue{{Title: "Late night call", Text: "It was worth it."}},
		FinishedAt: time.Now().UTC(),
	}
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got *ports.GameResultRecord
	for i := range records {
		if records[i].SessionID == sessionID {
			got = &records[i]
			break
		}
	}
	if got == nil {
		t.Fatalf("saved record not listed")
	}
	if !got.Summary.Win || got.Summary.TimeLeft != 42.5 {
		t.Fatalf("summary mangled: %+v", got.Summary)
	}
	if len(got.Epilogues) != 1 || got.Epilogues[0].Title != "Late night call" {
		t.Fatalf("epilogues mangled: %+v", got.Epilogues)
	}
}

func TestAnalyticsRepo_AppendAndList(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, "../../../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sessionID := "it-analytics-roundtrip"
	_ = db.Exec("DELETE FROM analytics_events WHERE session_id = ?", sessionID).Error

	repo := NewAnalyticsRepo(db)
	base := time.Now().UTC().Truncate(time.Millisecond)
	events := []game.AnalyticsEvent{
		{Name: "start", OccurredAt: base},
		{Name: "finish", OccurredAt: base.Add(time.Minute), Payload: map[string]any{"win": true}},
	}
	if err := repo.Append(ctx, sessionID, events); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ListBySessionID(ctx, sessionID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "start" || got[1].Name != "finish" {
		t.Fatalf("journal order wrong: %+v", got)
	}
	if win, _ := got[1].Payload["win"].(bool); !win {
		t.Fatalf("payload lost: %+v", got[1].Payload)
	}
}

func TestAnalyticsRepo_EmptyIsNotFound(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	repo := NewAnalyticsRepo(db)
	if _, err := repo.ListBySessionID(context.Background(), "it-absent-session", 5); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, "../../../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sessionID := "it-tx-rollback"
	_ = db.Exec("DELETE FROM game_results WHERE session_id = ?", sessionID).Error

	tm := NewTxManager(db)
	results := NewResultRepo(db)
	boom := errors.New("boom")
	err = tm.RunInTx(ctx, func(ctx context.Context) error {
		if err := results.Save(ctx, ports.GameResultRecord{SessionID: sessionID, FinishedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the inner error, got %v", err)
	}

	var count int64
	if err := db.Table("game_results").Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rollback did not happen, count=%d", count)
	}
}
