package static

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"mevsbrain/internal/domain/game"
)

// Loader reads the story-event feed from a JSON file and validates it
// fail closed: an event whose structure is broken or whose referenced clips
// are missing under the video root is dropped with a log line, never served.
type Loader struct {
	eventsPath string
	videoRoot  string
	logger     *log.Logger
}

// NewLoader builds a Loader. An empty videoRoot disables the asset existence
// check, which headless deployments without media files rely on.
func NewLoader(eventsPath, videoRoot string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{eventsPath: eventsPath, videoRoot: videoRoot, logger: logger}
}

type feedFile struct {
	Events []eventDef `json:"events"`
}

type eventDef struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	Title           string      `json:"title"`
	FullDescription string      `json:"fullDescription"`
	MainVideo       string      `json:"mainVideo"`
	LoopVideo       string      `json:"loopVideo"`
	Weight          float64     `json:"weight"`
	Choices         []choiceDef `json:"choices"`
	QTESettings     *qteDef     `json:"qteSettings"`
	SuccessOutcome  *outcomeDef `json:"successOutcome"`
	FailureOutcome  *outcomeDef `json:"failureOutcome"`
}

type choiceDef struct {
	ButtonText string     `json:"buttonText"`
	Outcome    outcomeDef `json:"outcome"`
}

type qteDef struct {
	ClicksToWin int   `json:"clicksToWin"`
	DurationMS  int64 `json:"duration"`
}

type outcomeDef struct {
	Video         string      `json:"video"`
	Sound         string      `json:"sound"`
	Effects       []effectDef `json:"effects"`
	EpilogueTexts []string    `json:"epilogueTexts"`
}

type effectDef struct {
	Type       string  `json:"type"`
	Value      float64 `json:"value"`
	DurationMS int64   `json:"duration"`
}

// LoadEvents reads and validates the feed. A missing or malformed file is an
// error; individual broken events are dropped instead.
func (l *Loader) LoadEvents(ctx context.Context) ([]game.StoryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.eventsPath)
	if err != nil {
		return nil, fmt.Errorf("reading events feed: %w", err)
	}
	var feed feedFile
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("decoding events feed: %w", err)
	}

	out := make([]game.StoryEvent, 0, len(feed.Events))
	for _, def := range feed.Events {
		ev := def.toDomain()
		if err := ev.Validate(); err != nil {
			l.logger.Printf("dropping event %q: %v", def.ID, err)
			continue
		}
		if missing := l.missingAssets(ev); len(missing) > 0 {
			l.logger.Printf("dropping event %q: missing clips %v", ev.ID, missing)
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (l *Loader) missingAssets(ev game.StoryEvent) []string {
	if l.videoRoot == "" {
		return nil
	}
	var missing []string
	for _, clip := range ev.Videos() {
		if _, err := os.Stat(filepath.Join(l.videoRoot, clip)); err != nil {
			missing = append(missing, clip)
		}
	}
	return missing
}

func (d eventDef) toDomain() game.StoryEvent {
	ev := game.StoryEvent{
		ID:              d.ID,
		Type:            game.EventType(d.Type),
		Title:           d.Title,
		FullDescription: d.FullDescription,
		MainVideo:       d.MainVideo,
		LoopVideo:       d.LoopVideo,
		Weight:          d.Weight,
		SuccessOutcome:  d.SuccessOutcome.toDomain(),
		FailureOutcome:  d.FailureOutcome.toDomain(),
	}
	for _, c := range d.Choices {
		ev.Choices = append(ev.Choices, game.Choice{
			ButtonText: c.ButtonText,
			Outcome:    *c.Outcome.toDomainValue(),
		})
	}
	if d.QTESettings != nil {
		ev.QTE = &game.QTESettings{
			ClicksToWin: d.QTESettings.ClicksToWin,
			Duration:    time.Duration(d.QTESettings.DurationMS) * time.Millisecond,
		}
	}
	return ev
}

func (d *outcomeDef) toDomain() *game.Outcome {
	if d == nil {
		return nil
	}
	return d.toDomainValue()
}

func (d *outcomeDef) toDomainValue() *game.Outcome {
	out := &game.Outcome{
		Video:         d.Video,
		Sound:         d.Sound,
		EpilogueTexts: d.EpilogueTexts,
	}
	for _, e := range d.Effects {
		out.Effects = append(out.Effects, game.Effect{
			Kind:     game.ParseEffectKind(e.Type),
			Value:    e.Value,
			Duration: time.Duration(e.DurationMS) * time.Millisecond,
		})
	}
	return out
}
