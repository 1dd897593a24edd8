package inmemory

import (
	"testing"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

var _ ports.GameMetrics = (*Recorder)(nil)

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordSessionStarted()
	r.RecordSessionStarted()
	r.RecordFinish(true)
	r.RecordFinish(false)
	r.RecordEventTriggered("choice")
	r.RecordEventTriggered("choice")
	r.RecordEventTriggered("qte")
	r.RecordChallengeResult(game.ChallengeTyping, true)
	r.RecordChallengeResult(game.ChallengeTyping, false)

	s := r.Snapshot()
	if s.SessionsStarted != 2 {
		t.Fatalf("expected 2 sessions, got %d", s.SessionsStarted)
	}
	if s.FinishedTotal != 2 || s.Wins != 1 || s.Losses != 1 {
		t.Fatalf("finish counters wrong: %+v", s)
	}
	if s.EventsByType["choice"] != 2 || s.EventsByType["qte"] != 1 {
		t.Fatalf("event counters wrong: %+v", s.EventsByType)
	}
	if s.ChallengeWins[string(game.ChallengeTyping)] != 1 {
		t.Fatalf("challenge win counter wrong")
	}
	if s.ChallengeFails[string(game.ChallengeTyping)] != 1 {
		t.Fatalf("challenge fail counter wrong")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.RecordEventTriggered("choice")
	s := r.Snapshot()
	s.EventsByType["choice"] = 99

	if r.Snapshot().EventsByType["choice"] != 1 {
		t.Fatalf("snapshot aliases internal state")
	}
}
