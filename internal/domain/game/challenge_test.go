package game

import (
	"math/rand"
	"testing"
)

func TestBuildChallengeRandomizesParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	spam := BuildChallenge(ChallengeKeySpam, rng)
	if spam == nil || spam.TargetKey == "" || spam.RequiredHits <= 0 {
		t.Fatalf("key spam challenge incomplete: %+v", spam)
	}
	if spam.TargetLabel == "" {
		t.Fatalf("missing display label")
	}

	combo := BuildChallenge(ChallengeComboInput, rng)
	if combo == nil || len(combo.Sequence) < 3 || len(combo.Sequence) > 5 {
		t.Fatalf("combo sequence length out of range: %+v", combo)
	}
	if len(combo.Sequence) != len(combo.SequenceLabels) {
		t.Fatalf("labels not aligned with sequence")
	}

	typing := BuildChallenge(ChallengeTyping, rng)
	if typing == nil || typing.Phrase == "" || typing.PenaltyPerMistake <= 0 {
		t.Fatalf("typing challenge incomplete: %+v", typing)
	}
}

func TestBuildChallengeUnknownTemplate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := BuildChallenge(ChallengeType("dance_battle"), rng); got != nil {
		t.Fatalf("expected nil for unknown template, got %+v", got)
	}
}

func TestBuildChallengeFreshInstances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c := BuildChallenge(ChallengeKeySpam, rng)
		seen[c.TargetKey] = true
	}
	if len(seen) < 2 {
		t.Fatalf("target key never varies across instances")
	}
}

func TestStoryEventValidate(t *testing.T) {
	valid := StoryEvent{
		ID:        "ev",
		Type:      EventChoice,
		MainVideo: "ev.mp4",
		Choices:   []Choice{{ButtonText: "ok", Outcome: Outcome{Video: "out.mp4"}}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	cases := []StoryEvent{
		{},
		{ID: "x", Type: EventChoice, MainVideo: "a.mp4"},
		{ID: "x", Type: EventQTE, MainVideo: "a.mp4"},
		{ID: "x", Type: EventType("riddle"), MainVideo: "a.mp4"},
	}
	for i, ev := range cases {
		if err := ev.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestStoryEventVideos(t *testing.T) {
	ev := StoryEvent{
		ID:        "ev",
		Type:      EventQTE,
		MainVideo: "main.mp4",
		LoopVideo: "loop.mp4",
		QTE:       &QTESettings{ClicksToWin: 5, Duration: 3000},
		SuccessOutcome: &Outcome{Video: "ok.mp4"},
		FailureOutcome: &Outcome{Video: "fail.mp4"},
	}
	videos := ev.Videos()
	if len(videos) != 4 {
		t.Fatalf("expected 4 clips, got %v", videos)
	}
}
