package input

import (
	"strings"
	"sync"
	"time"

	"mevsbrain/internal/app/timers"
	"mevsbrain/internal/domain/game"
)

// Result is the single resolution of a mini-challenge.
type Result struct {
	Success            bool
	Reason             string
	ProgressAdjustment float64
	TimePenalty        float64
	Mistakes           int
}

// PenaltySink receives immediate time penalties (typing mistakes).
type PenaltySink interface {
	ApplyTimePenalty(seconds float64)
}

// Handler runs exactly one mini-challenge at a time. Start returns a one-shot
// channel that either delivers the result or is closed when the challenge is
// cancelled. All methods expect the session lock to be held by the caller;
// the time-box callback acquires it on its own.
type Handler struct {
	mu        sync.Locker
	registry  *timers.Registry
	penalties PenaltySink

	active *activeChallenge
}

type activeChallenge struct {
	def      game.Challenge
	hits     int
	index    int
	mistakes int
	rawValue string
	deadline time.Time
	resultCh chan Result
}

func NewHandler(mu sync.Locker, registry *timers.Registry, penalties PenaltySink) *Handler {
	return &Handler{mu: mu, registry: registry, penalties: penalties}
}

// Start activates a challenge and arms its time-box. A stale outstanding
// challenge is cancelled defensively; its channel closes without a result.
func (h *Handler) Start(def game.Challenge) <-chan Result {
	h.cancelActive()

	ch := &activeChallenge{
		def:      def,
		deadline: time.Now().Add(def.Duration),
		resultCh: make(chan Result, 1),
	}
	h.active = ch

	h.registry.Arm(timers.Challenge, def.Duration, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.active != ch {
			return
		}
		h.finish(false, "timeout")
	})

	return ch.resultCh
}

// Cancel aborts any outstanding challenge without a result.
func (h *Handler) Cancel() {
	h.cancelActive()
}

// Active reports whether a challenge is in flight.
func (h *Handler) Active() bool { return h.active != nil }

// HandleKey feeds one physical key press (a code like "KeyA") to the key
// spam and combo challenges. Typing input goes through HandleText.
func (h *Handler) HandleKey(code string) {
	ch := h.active
	if ch == nil || isIgnoredKey(code) {
		return
	}
	switch ch.def.Type {
	case game.ChallengeKeySpam:
		if code != ch.def.TargetKey {
			return
		}
		ch.hits++
		if ch.hits >= ch.def.RequiredHits {
			h.finish(true, "completed")
		}
	case game.ChallengeComboInput:
		if ch.index >= len(ch.def.Sequence) {
			return
		}
		if code == ch.def.Sequence[ch.index] {
			ch.index++
			if ch.index >= len(ch.def.Sequence) {
				h.finish(true, "combo-complete")
			}
			return
		}
		ch.mistakes++
		if ch.mistakes > ch.def.AllowedMistakes {
			h.finish(false, "combo-fail")
		}
	}
}

// HandleText feeds the full current input value of a typing challenge.
// Progress is measured by the longest common prefix with the phrase; each
// newly typed character that deviates from the expected one counts a mistake
// and applies one immediate time penalty, without ending the challenge.
func (h *Handler) HandleText(value string) {
	ch := h.active
	if ch == nil || ch.def.Type != game.ChallengeTyping {
		return
	}
	target := []rune(ch.def.Phrase)
	typed := []rune(value)
	if len(typed) > len(target) {
		typed = typed[:len(target)]
	}

	previous := []rune(ch.rawValue)
	ch.rawValue = string(typed)

	if len(typed) > len(previous) {
		for i := len(previous); i < len(typed); i++ {
			if typed[i] != target[i] {
				h.recordTypingMistake(ch)
				break
			}
		}
	} else if len(typed) == len(previous) && len(typed) > 0 {
		for i := range typed {
			if typed[i] != previous[i] && typed[i] != target[i] {
				h.recordTypingMistake(ch)
				break
			}
		}
	}

	if matchingPrefixLen(typed, target) >= len(target) {
		h.finish(true, "typed")
	}
}

func (h *Handler) recordTypingMistake(ch *activeChallenge) {
	ch.mistakes++
	if ch.def.PenaltyPerMistake > 0 && h.penalties != nil {
		h.penalties.ApplyTimePenalty(ch.def.PenaltyPerMistake)
	}
}

// View exposes the in-flight challenge for state snapshots.
func (h *Handler) View() (def *game.Challenge, ratio float64, remaining time.Duration) {
	ch := h.active
	if ch == nil {
		return nil, 0, 0
	}
	def = &ch.def
	switch ch.def.Type {
	case game.ChallengeKeySpam:
		if ch.def.RequiredHits > 0 {
			ratio = float64(ch.hits) / float64(ch.def.RequiredHits)
		}
	case game.ChallengeComboInput:
		if len(ch.def.Sequence) > 0 {
			ratio = float64(ch.index) / float64(len(ch.def.Sequence))
		}
	case game.ChallengeTyping:
		target := []rune(ch.def.Phrase)
		if len(target) > 0 {
			ratio = float64(matchingPrefixLen([]rune(ch.rawValue), target)) / float64(len(target))
		}
	}
	if ratio > 1 {
		ratio = 1
	}
	remaining = time.Until(ch.deadline)
	if remaining < 0 {
		remaining = 0
	}
	return def, ratio, remaining
}

func (h *Handler) finish(success bool, reason string) {
	ch := h.active
	if ch == nil {
		return
	}
	h.active = nil
	h.registry.Cancel(timers.Challenge)

	result := Result{Success: success, Reason: reason, Mistakes: ch.mistakes}
	if success {
		result.ProgressAdjustment = ch.def.Success.ProgressAdjustment
	} else {
		result.TimePenalty = ch.def.Fail.TimePenalty
	}
	ch.resultCh <- result
	close(ch.resultCh)
}

func (h *Handler) cancelActive() {
	if h.active == nil {
		return
	}
	h.registry.Cancel(timers.Challenge)
	close(h.active.resultCh)
	h.active = nil
}

func matchingPrefixLen(value, target []rune) int {
	max := len(value)
	if len(target) < max {
		max = len(target)
	}
	for i := 0; i < max; i++ {
		if value[i] != target[i] {
			return i
		}
	}
	return max
}

func isIgnoredKey(code string) bool {
	if code == "Escape" {
		return true
	}
	for _, prefix := range []string{"Shift", "Alt", "Control", "Meta"} {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}
