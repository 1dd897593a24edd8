package game

import (
	"errors"
	"time"
)

type EventType string

const (
	EventChoice EventType = "choice"
	EventQTE    EventType = "qte"
)

var ErrInvalidStoryEvent = errors.New("invalid story event")

// StoryEvent is a narrative interruption loaded from the content feed.
// Immutable after registration.
type StoryEvent struct {
	ID              string
	Type            EventType
	Title           string
	FullDescription string
	MainVideo       string
	LoopVideo       string
	Weight          float64

	Choices []Choice

	QTE            *QTESettings
	SuccessOutcome *Outcome
	FailureOutcome *Outcome
}

type Choice struct {
	ButtonText string
	Outcome    Outcome
}

type QTESettings struct {
	ClicksToWin int
	Duration    time.Duration
}

// Outcome bundles the playback clip with the declarative consequences of a
// resolved branch.
type Outcome struct {
	Video         string
	Sound         string
	Effects       []Effect
	EpilogueTexts []string
}

// Validate checks structural integrity; asset existence is the content
// adapter's concern.
func (e StoryEvent) Validate() error {
	if e.ID == "" || e.MainVideo == "" {
		return ErrInvalidStoryEvent
	}
	switch e.Type {
	case EventChoice:
		if len(e.Choices) == 0 {
			return ErrInvalidStoryEvent
		}
	case EventQTE:
		if e.QTE == nil || e.QTE.ClicksToWin <= 0 || e.QTE.Duration <= 0 {
			return ErrInvalidStoryEvent
		}
		if e.SuccessOutcome == nil || e.FailureOutcome == nil {
			return ErrInvalidStoryEvent
		}
	default:
		return ErrInvalidStoryEvent
	}
	return nil
}

// Videos lists every clip the event can play, for load-time validation.
func (e StoryEvent) Videos() []string {
	out := []string{e.MainVideo}
	if e.LoopVideo != "" {
		out = append(out, e.LoopVideo)
	}
	for _, c := range e.Choices {
		if c.Outcome.Video != "" {
			out = append(out, c.Outcome.Video)
		}
	}
	for _, o := range []*Outcome{e.SuccessOutcome, e.FailureOutcome} {
		if o != nil && o.Video != "" {
			out = append(out, o.Video)
		}
	}
	return out
}
