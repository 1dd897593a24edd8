package ports

import (
	"context"
	"time"

	"mevsbrain/internal/domain/game"
)

// GameResultRecord is the snapshot persisted when a run ends.
type GameResultRecord struct {
	SessionID  string          `json:"session_id"`
	Summary    game.Summary    `json:"summary"`
	Epilogues  []game.Epilogue `json:"epilogues,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

type ResultRepository interface {
	Save(ctx context.Context, record GameResultRecord) error
	ListRecent(ctx context.Context, limit int) ([]GameResultRecord, error)
}

// AnalyticsRepository stores the per-session gameplay log. Appends are
// fire-and-forget from the session's point of view.
type AnalyticsRepository interface {
	Append(ctx context.Context, sessionID string, events []game.AnalyticsEvent) error
	ListBySessionID(ctx context.Context, sessionID string, limit int) ([]game.AnalyticsEvent, error)
}
