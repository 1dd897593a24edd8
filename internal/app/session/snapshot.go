package session

import (
	"mevsbrain/internal/domain/game"
)

// Snapshot is the full client-facing view of a run, taken atomically.
type Snapshot struct {
	SessionID string  `json:"session_id"`
	Progress  float64 `json:"progress"`
	TimeLeft  float64 `json:"time_left"`
	Focus     float64 `json:"focus"`

	Running         bool `json:"running"`
	Paused          bool `json:"paused"`
	Working         bool `json:"working"`
	EventActive     bool `json:"event_active"`
	PhoneDistracted bool `json:"phone_distracted"`
	WorkDisabled    bool `json:"work_disabled"`
	WorkAllowed     bool `json:"work_allowed"`
	Finished        bool `json:"finished"`
	Win             bool `json:"win"`

	PhoneClicksRemaining int `json:"phone_clicks_remaining,omitempty"`

	EventMessage             string `json:"event_message,omitempty"`
	ActiveEffectsDescription string `json:"active_effects_description,omitempty"`

	Event     *EventView      `json:"event,omitempty"`
	QTE       *QTEView        `json:"qte,omitempty"`
	Challenge *ChallengeView  `json:"challenge,omitempty"`
	Epilogues []game.Epilogue `json:"epilogues,omitempty"`
}

// EventView shows the staged story event and, for choice events, the branch
// buttons.
type EventView struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

type QTEView struct {
	KeyLabel string `json:"key_label"`
	Clicks   int    `json:"clicks"`
	Needed   int    `json:"needed"`
}

// ChallengeView shows the in-flight mini-challenge with its live ratio and
// remaining time.
type ChallengeView struct {
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Instructions   string   `json:"instructions"`
	TargetLabel    string   `json:"target_label,omitempty"`
	SequenceLabels []string `json:"sequence_labels,omitempty"`
	Phrase         string   `json:"phrase,omitempty"`
	Ratio          float64  `json:"ratio"`
	RemainingMS    int64    `json:"remaining_ms"`
}

// Snapshot captures the current run state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:                s.ID,
		Progress:                 s.state.Progress,
		TimeLeft:                 s.state.TimeLeft,
		Focus:                    s.state.Focus,
		Running:                  s.running,
		Paused:                   s.state.Paused,
		Working:                  s.state.Working,
		EventActive:              s.state.EventActive,
		PhoneDistracted:          s.state.PhoneDistracted,
		WorkDisabled:             s.state.WorkDisabled,
		WorkAllowed:              s.state.WorkAllowed() && s.running && !s.finished,
		Finished:                 s.finished,
		Win:                      s.win,
		PhoneClicksRemaining:     s.state.PhoneClicksRemaining,
		EventMessage:             s.state.EventMessage,
		ActiveEffectsDescription: s.state.ActiveEffectsDescription,
		Epilogues:                append([]game.Epilogue(nil), s.state.Epilogues...),
	}

	if ev := s.state.CurrentEvent; ev != nil {
		view := &EventView{
			ID:          ev.ID,
			Type:        string(ev.Type),
			Title:       ev.Title,
			Description: ev.FullDescription,
		}
		for _, c := range ev.Choices {
			view.Choices = append(view.Choices, c.ButtonText)
		}
		snap.Event = view
	}
	if qte, ok := s.events.QTE(); ok {
		snap.QTE = &QTEView{KeyLabel: qte.KeyLabel, Clicks: qte.Clicks, Needed: qte.Needed}
	}
	if def, ratio, remaining := s.input.View(); def != nil {
		snap.Challenge = &ChallengeView{
			Type:           string(def.Type),
			Title:          def.Title,
			Instructions:   def.Instructions,
			TargetLabel:    def.TargetLabel,
			SequenceLabels: def.SequenceLabels,
			Phrase:         def.Phrase,
			Ratio:          ratio,
			RemainingMS:    remaining.Milliseconds(),
		}
	}
	return snap
}
