package event

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"mevsbrain/internal/app/input"
	"mevsbrain/internal/app/pace"
	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/app/timers"
	"mevsbrain/internal/domain/game"
)

// QTEView is the snapshot of an in-flight quick-time event.
type QTEView struct {
	KeyCode  string
	KeyLabel string
	Clicks   int
	Needed   int
}

// Manager orchestrates story events and mini-challenges for one session: the
// weighted story pool, the trigger roll with its cooldown, choice and QTE
// resolution, and outcome completion. All exported methods expect the session
// lock to be held; asynchronous continuations (media end, challenge result,
// QTE time-box) acquire it themselves and re-check the run generation before
// touching anything.
type Manager struct {
	mu       sync.Locker
	state    *game.State
	tuning   game.Tuning
	registry *timers.Registry
	pace     *pace.Deadline
	input    *input.Handler
	media    ports.MediaPlayer
	effects  *Applier
	rng      *rand.Rand
	logger   *log.Logger
	now      func() time.Time

	// Publish records one analytics event; OnResolved runs after an event or
	// challenge fully resolves, while the lock is still held.
	Publish    func(name string, payload map[string]any)
	OnResolved func()

	events      map[string]*game.StoryEvent
	order       []string
	pool        []string
	lastTrigger time.Time
	gen         uint64

	qteKey    string
	qteLabel  string
	qteClicks int
	qteNeeded int
}

func NewManager(mu sync.Locker, state *game.State, tuning game.Tuning, registry *timers.Registry, p *pace.Deadline, in *input.Handler, media ports.MediaPlayer, effects *Applier, rng *rand.Rand, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		mu:       mu,
		state:    state,
		tuning:   tuning,
		registry: registry,
		pace:     p,
		input:    in,
		media:    media,
		effects:  effects,
		rng:      rng,
		logger:   logger,
		now:      time.Now,
		events:   make(map[string]*game.StoryEvent),
	}
}

// SetEvents registers the story catalogue. Invalid events are rejected at
// load time by the content adapter; this only indexes them.
func (m *Manager) SetEvents(events []game.StoryEvent) {
	m.events = make(map[string]*game.StoryEvent, len(events))
	m.order = m.order[:0]
	for i := range events {
		ev := events[i]
		m.events[ev.ID] = &ev
		m.order = append(m.order, ev.ID)
	}
	m.refillPool()
}

// Reset prepares the manager for a fresh run. Continuations armed by the
// previous run see a stale generation and drop themselves.
func (m *Manager) Reset() {
	m.gen++
	m.lastTrigger = time.Time{}
	m.clearQTE()
	m.input.Cancel()
	m.refillPool()
}

// MaybeTrigger performs the per-tick event roll. No-op while another event or
// phone distraction holds the stage, or within the cooldown window.
func (m *Manager) MaybeTrigger() {
	if m.state.EventActive || m.state.PhoneDistracted || m.input.Active() {
		return
	}
	if !m.lastTrigger.IsZero() && m.now().Sub(m.lastTrigger) < m.tuning.EventCooldown {
		return
	}
	chance := m.tuning.EventBaseChance +
		math.Min(m.tuning.EventProgressBoostCap, m.state.Progress/m.tuning.EventProgressDivisor)
	if m.state.Focus < m.tuning.EventLowFocusCutoff {
		chance += m.tuning.EventLowFocusBonus
	}
	chance = math.Min(m.tuning.EventChanceCap, chance)
	if m.rng.Float64() >= chance {
		return
	}
	if m.rng.Float64() < m.tuning.ChallengeShare || len(m.events) == 0 {
		m.startRandomChallenge()
		return
	}
	m.startStory(m.drawStory())
}

// StartStoryByID force-triggers a specific story event. Returns ErrNotFound
// for an unknown id and ErrConflict while the stage is busy.
func (m *Manager) StartStoryByID(id string) error {
	ev, ok := m.events[id]
	if !ok {
		return ports.ErrNotFound
	}
	if m.state.EventActive || m.state.PhoneDistracted || m.input.Active() {
		return ports.ErrConflict
	}
	m.startStory(ev)
	return nil
}

// drawStory picks from the depleting weighted pool, refilling it once every
// event has appeared.
func (m *Manager) drawStory() *game.StoryEvent {
	if len(m.pool) == 0 {
		m.refillPool()
	}
	total := 0.0
	for _, id := range m.pool {
		total += m.weightOf(id)
	}
	roll := m.rng.Float64() * total
	idx := len(m.pool) - 1
	for i, id := range m.pool {
		roll -= m.weightOf(id)
		if roll < 0 {
			idx = i
			break
		}
	}
	id := m.pool[idx]
	m.pool = append(m.pool[:idx], m.pool[idx+1:]...)
	return m.events[id]
}

func (m *Manager) weightOf(id string) float64 {
	if ev := m.events[id]; ev != nil && ev.Weight > 0 {
		return ev.Weight
	}
	return 1
}

func (m *Manager) refillPool() {
	m.pool = append(m.pool[:0], m.order...)
}

func (m *Manager) startStory(ev *game.StoryEvent) {
	if ev == nil {
		return
	}
	m.state.EventActive = true
	m.state.Working = false
	m.state.CurrentEvent = ev
	m.publish("event_triggered", map[string]any{"event_id": ev.ID, "type": string(ev.Type)})

	gen := m.gen
	m.media.Play(ev.MainVideo, false, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen || m.state.CurrentEvent != ev {
			return
		}
		m.enterInteractivePhase(ev)
	})
}

// enterInteractivePhase runs after the intro clip: choice events idle on the
// loop clip waiting for Choose, QTE events additionally arm the key and the
// time-box.
func (m *Manager) enterInteractivePhase(ev *game.StoryEvent) {
	if ev.LoopVideo != "" {
		m.media.Play(ev.LoopVideo, true, nil)
	}
	if ev.Type != game.EventQTE {
		return
	}
	m.qteKey, m.qteLabel = game.QTEKey(m.rng)
	m.qteClicks = 0
	m.qteNeeded = ev.QTE.ClicksToWin

	gen := m.gen
	m.registry.Arm(timers.QTE, ev.QTE.Duration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen || m.state.CurrentEvent != ev {
			return
		}
		m.publish("qte_result", map[string]any{"event_id": ev.ID, "success": false, "clicks": m.qteClicks})
		m.clearQTE()
		m.completeOutcome(ev, ev.FailureOutcome)
	})
}

// Choose resolves a choice event branch. ErrConflict when no choice event is
// awaiting input, ErrNotFound for an out-of-range index.
func (m *Manager) Choose(index int) error {
	ev := m.state.CurrentEvent
	if ev == nil || ev.Type != game.EventChoice {
		return ports.ErrConflict
	}
	if index < 0 || index >= len(ev.Choices) {
		return ports.ErrNotFound
	}
	choice := ev.Choices[index]
	m.publish("choice_made", map[string]any{"event_id": ev.ID, "choice": index, "text": choice.ButtonText})
	m.completeOutcome(ev, &choice.Outcome)
	return nil
}

// HandleQTEKey feeds one key press to an armed quick-time event.
func (m *Manager) HandleQTEKey(code string) {
	ev := m.state.CurrentEvent
	if ev == nil || ev.Type != game.EventQTE || m.qteNeeded == 0 || code != m.qteKey {
		return
	}
	m.qteClicks++
	if m.qteClicks < m.qteNeeded {
		return
	}
	m.registry.Cancel(timers.QTE)
	m.publish("qte_result", map[string]any{"event_id": ev.ID, "success": true, "clicks": m.qteClicks})
	m.clearQTE()
	m.completeOutcome(ev, ev.SuccessOutcome)
}

// QTE reports the in-flight quick-time state, or false when none is armed.
func (m *Manager) QTE() (QTEView, bool) {
	if m.qteNeeded == 0 {
		return QTEView{}, false
	}
	return QTEView{KeyCode: m.qteKey, KeyLabel: m.qteLabel, Clicks: m.qteClicks, Needed: m.qteNeeded}, true
}

// completeOutcome plays the outcome clip, then lands the consequences: apply
// effects, show the banner, play the sound, append a random epilogue, stamp
// the cooldown and hand control back through OnResolved.
func (m *Manager) completeOutcome(ev *game.StoryEvent, outcome *game.Outcome) {
	if outcome == nil {
		m.finalizeOutcome(ev, &game.Outcome{})
		return
	}
	if outcome.Video == "" {
		m.finalizeOutcome(ev, outcome)
		return
	}
	gen := m.gen
	m.media.Play(outcome.Video, false, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen {
			return
		}
		m.finalizeOutcome(ev, outcome)
	})
}

func (m *Manager) finalizeOutcome(ev *game.StoryEvent, outcome *game.Outcome) {
	desc := m.effects.Apply(outcome.Effects)
	m.state.ActiveEffectsDescription = desc
	gen := m.gen
	m.registry.Arm(timers.EffectsBanner, m.tuning.EffectsBannerTimeout, func() {
		m.mu.Lock()
		if m.gen == gen {
			m.state.ActiveEffectsDescription = ""
		}
		m.mu.Unlock()
	})

	if outcome.Sound != "" {
		m.media.PlaySound(outcome.Sound)
	}
	if len(outcome.EpilogueTexts) > 0 {
		m.state.AddEpilogue(ev.Title, outcome.EpilogueTexts[m.rng.Intn(len(outcome.EpilogueTexts))])
	}

	m.state.EventActive = false
	m.state.CurrentEvent = nil
	m.lastTrigger = m.now()
	m.publish("event_outcome", map[string]any{"event_id": ev.ID, "effects": len(outcome.Effects)})
	if m.OnResolved != nil {
		m.OnResolved()
	}
}

func (m *Manager) startRandomChallenge() {
	id := game.ChallengeTemplates[m.rng.Intn(len(game.ChallengeTemplates))]
	m.StartChallenge(id)
}

// StartChallenge launches a mini-challenge built from the template and waits
// for its one-shot result off the lock.
func (m *Manager) StartChallenge(id game.ChallengeType) {
	def := game.BuildChallenge(id, m.rng)
	if def == nil {
		m.logger.Printf("unknown challenge template %q", id)
		return
	}
	m.state.EventActive = true
	m.state.Working = false
	m.state.EventMessage = def.Instructions
	m.publish("event_triggered", map[string]any{"challenge": string(id)})

	gen := m.gen
	resultCh := m.input.Start(*def)
	go func() {
		res, ok := <-resultCh
		if !ok {
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen {
			return
		}
		m.resolveChallenge(id, res)
	}()
}

func (m *Manager) resolveChallenge(id game.ChallengeType, res input.Result) {
	if res.Success {
		m.state.IncreaseProgress(res.ProgressAdjustment)
		m.state.EventMessage = ""
	} else {
		m.pace.ApplyTimePenalty(res.TimePenalty)
		m.state.EventMessage = "Failed! The deadline creeps closer."
		gen := m.gen
		m.registry.Arm(timers.FailBanner, m.tuning.FailBannerTimeout, func() {
			m.mu.Lock()
			if m.gen == gen {
				m.state.EventMessage = ""
			}
			m.mu.Unlock()
		})
	}
	m.state.EventActive = false
	m.lastTrigger = m.now()
	m.publish("challenge_result", map[string]any{
		"challenge": string(id),
		"success":   res.Success,
		"reason":    res.Reason,
		"mistakes":  res.Mistakes,
	})
	if m.OnResolved != nil {
		m.OnResolved()
	}
}

func (m *Manager) clearQTE() {
	m.qteKey = ""
	m.qteLabel = ""
	m.qteClicks = 0
	m.qteNeeded = 0
}

func (m *Manager) publish(name string, payload map[string]any) {
	if m.Publish != nil {
		m.Publish(name, payload)
	}
}
