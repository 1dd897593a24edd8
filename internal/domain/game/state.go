package game

import "math"

// State is the single mutable record of one run. It is owned by a session
// and mutated only under the session lock; expiring timers attached to the
// rate modifier and work disable live in the session's timer registry, not
// here.
type State struct {
	Progress float64
	TimeLeft float64
	Focus    float64

	Paused          bool
	Working         bool
	EventActive     bool
	PhoneDistracted bool
	WorkDisabled    bool

	PhoneClicksRemaining int

	EventMessage             string
	ActiveEffectsDescription string

	CurrentEvent *StoryEvent
	Epilogues    []Epilogue

	ProgressRateModifier float64
}

type Epilogue struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func NewState(tuning Tuning) *State {
	s := &State{}
	s.Reset(tuning)
	return s
}

// Reset restores the run defaults. Callers are responsible for sweeping any
// timers that referenced the previous run.
func (s *State) Reset(tuning Tuning) {
	s.Progress = 0
	s.TimeLeft = float64(tuning.GameDurationSeconds)
	s.Focus = 100
	s.Paused = false
	s.Working = false
	s.EventActive = false
	s.PhoneDistracted = false
	s.WorkDisabled = false
	s.PhoneClicksRemaining = 0
	s.EventMessage = ""
	s.ActiveEffectsDescription = ""
	s.CurrentEvent = nil
	s.Epilogues = nil
	s.ProgressRateModifier = 1.0
}

// IncreaseProgress is the only gain path for progress. The rate modifier
// applies here and nowhere else; the result is rounded to two decimals so
// repeated small clicks do not accumulate float noise.
func (s *State) IncreaseProgress(amount float64) {
	if amount <= 0 {
		return
	}
	modified := amount * s.ProgressRateModifier
	s.Progress = math.Min(100, math.Round((s.Progress+modified)*100)/100)
}

// DecreaseProgress lowers progress by |amount|, ignoring the rate modifier.
func (s *State) DecreaseProgress(amount float64) {
	if amount == 0 {
		return
	}
	s.Progress = math.Max(0, s.Progress-math.Abs(amount))
}

// AdjustProgress applies a raw signed delta, clamped. Outcome effects use
// this path so a slowdown modifier cannot dampen a story reward.
func (s *State) AdjustProgress(delta float64) {
	s.Progress = clamp(s.Progress+delta, 0, 100)
}

func (s *State) DecrementTimeLeft(amount float64) {
	s.TimeLeft = math.Max(0, s.TimeLeft-amount)
}

// IncrementTimeLeft adds deadline budget back (positive modify_time effect).
func (s *State) IncrementTimeLeft(amount float64) {
	if amount <= 0 {
		return
	}
	s.TimeLeft += amount
}

func (s *State) AdjustFocus(delta float64) {
	s.Focus = clamp(s.Focus+delta, 0, 100)
}

func (s *State) DecrementPhoneClicks() {
	if s.PhoneClicksRemaining > 0 {
		s.PhoneClicksRemaining--
	}
}

func (s *State) AddEpilogue(title, text string) {
	s.Epilogues = append(s.Epilogues, Epilogue{Title: title, Text: text})
}

// WorkAllowed derives whether the work control is currently usable. During
// phone distraction the same control doubles as the escape button, so only
// an explicit work-disable effect blocks it there.
func (s *State) WorkAllowed() bool {
	if s.Paused || s.WorkDisabled {
		return false
	}
	if s.PhoneDistracted {
		return true
	}
	if s.EventActive {
		return false
	}
	return s.Progress < 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
