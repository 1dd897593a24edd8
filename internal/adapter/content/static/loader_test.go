package static

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

var _ ports.ContentProvider = (*Loader)(nil)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestLoadEventsDropsBrokenOnesAndKeepsTheRest(t *testing.T) {
	l := NewLoader(filepath.Join("testdata", "events.json"), filepath.Join("testdata", "videos"), quietLogger())
	events, err := l.LoadEvents(context.Background())
	if err != nil {
		t.Fatalf("LoadEvents error: %v", err)
	}
	// One event has a missing clip, one is structurally invalid.
	if len(events) != 1 {
		t.Fatalf("expected a single surviving event, got %d", len(events))
	}

	ev := events[0]
	if ev.ID != "late_night_call" || ev.Type != game.EventChoice || ev.Weight != 2 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if len(ev.Choices) != 2 {
		t.Fatalf("expected both choices, got %d", len(ev.Choices))
	}

	out := ev.Choices[0].Outcome
	if out.Video != "call_answer.mp4" || out.Sound != "ring.ogg" {
		t.Fatalf("outcome media lost: %+v", out)
	}
	if len(out.Effects) != 2 {
		t.Fatalf("effects lost: %+v", out.Effects)
	}
	if out.Effects[0].Kind != game.EffectModifyProgress || out.Effects[0].Value != -5 {
		t.Fatalf("first effect decoded wrong: %+v", out.Effects[0])
	}
	if out.Effects[1].Kind != game.EffectModifyProgressRate || out.Effects[1].Duration != 20*time.Second {
		t.Fatalf("millisecond duration decoded wrong: %+v", out.Effects[1])
	}
	if len(out.EpilogueTexts) != 1 {
		t.Fatalf("epilogue texts lost")
	}
}

func TestLoadEventsWithoutVideoRootSkipsAssetCheck(t *testing.T) {
	l := NewLoader(filepath.Join("testdata", "events.json"), "", quietLogger())
	events, err := l.LoadEvents(context.Background())
	if err != nil {
		t.Fatalf("LoadEvents error: %v", err)
	}
	// Only the structurally invalid event is dropped now.
	if len(events) != 2 {
		t.Fatalf("expected two events without asset checks, got %d", len(events))
	}
}

func TestLoadEventsMissingFileIsAnError(t *testing.T) {
	l := NewLoader(filepath.Join("testdata", "nope.json"), "", quietLogger())
	if _, err := l.LoadEvents(context.Background()); err == nil {
		t.Fatalf("expected an error for a missing feed")
	}
}

func TestLoadEventsHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLoader(filepath.Join("testdata", "events.json"), "", quietLogger())
	if _, err := l.LoadEvents(ctx); err == nil {
		t.Fatalf("expected a context error")
	}
}
