package session

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"mevsbrain/internal/app/event"
	"mevsbrain/internal/app/input"
	"mevsbrain/internal/app/pace"
	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/app/timers"
	"mevsbrain/internal/domain/game"
)

// Config carries the per-session runtime knobs.
type Config struct {
	Tuning game.Tuning
	// TickInterval is the real-time tick period, one second in production.
	TickInterval time.Duration
	// RealSecondsPerGameMinute sets how fast the in-game clock runs against
	// the wall clock. 60 means real time.
	RealSecondsPerGameMinute float64
	// PersistTimeout bounds the end-of-run write.
	PersistTimeout time.Duration
}

func (c *Config) fillDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.RealSecondsPerGameMinute <= 0 {
		c.RealSecondsPerGameMinute = 60
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 5 * time.Second
	}
}

// Session owns one run of the game. A single mutex serializes every mutation;
// the tick goroutine, timer callbacks and HTTP handlers all funnel through
// it, so the rest of the engine can stay lock-free.
type Session struct {
	ID string

	// OnStateChange, when set, receives a snapshot after every mutation.
	// Delivered on its own goroutine; the receiver observes a pure copy.
	OnStateChange func(Snapshot)

	mu  sync.Mutex
	cfg Config

	state    *game.State
	registry *timers.Registry
	pace     *pace.Deadline
	input    *input.Handler
	events   *event.Manager
	media    ports.MediaPlayer
	rng      *rand.Rand
	logger   *log.Logger

	tx        ports.TxManager
	results   ports.ResultRepository
	analytics ports.AnalyticsRepository
	metrics   ports.GameMetrics

	running  bool
	finished bool
	win      bool
	clicked  bool

	journal []game.AnalyticsEvent
}

// Deps bundles the session's collaborators.
type Deps struct {
	Media     ports.MediaPlayer
	Tx        ports.TxManager
	Results   ports.ResultRepository
	Analytics ports.AnalyticsRepository
	Metrics   ports.GameMetrics
	Logger    *log.Logger
	Rand      *rand.Rand
}

func New(id string, cfg Config, deps Deps, storyEvents []game.StoryEvent) *Session {
	cfg.fillDefaults()
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Session{
		ID:        id,
		cfg:       cfg,
		state:     game.NewState(cfg.Tuning),
		registry:  timers.NewRegistry(),
		media:     deps.Media,
		rng:       deps.Rand,
		logger:    deps.Logger,
		tx:        deps.Tx,
		results:   deps.Results,
		analytics: deps.Analytics,
		metrics:   deps.Metrics,
	}
	s.pace = pace.NewDeadline(&s.mu, s.state, s.registry, pace.Config{
		Interval:        cfg.TickInterval,
		MinTickModifier: cfg.Tuning.MinTickModifier,
	})
	s.input = input.NewHandler(&s.mu, s.registry, s.pace)
	applier := event.NewApplier(&s.mu, s.state, s.pace, s.registry, s.logger)
	s.events = event.NewManager(&s.mu, s.state, cfg.Tuning, s.registry, s.pace, s.input, s.media, applier, s.rng, s.logger)
	s.events.SetEvents(storyEvents)
	s.events.Publish = s.publish
	s.events.OnResolved = s.afterEventResolved

	s.pace.OnTick = s.tick
	s.pace.OnFinish = s.deadlineExpired
	return s
}

// Start begins a fresh run. seedStoryID, when non-empty, force-triggers that
// story event right after the clock starts.
func (s *Session) Start(seedStoryID string) {
	s.mu.Lock()
	s.resetRun()
	s.running = true
	s.publish("start", map[string]any{"seed": seedStoryID})
	if seedStoryID != "" {
		if err := s.events.StartStoryByID(seedStoryID); err != nil {
			s.logger.Printf("session %s: seed story %q: %v", s.ID, seedStoryID, err)
		}
	}
	s.notifyLocked()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSessionStarted()
	}
	s.pace.Start()
}

// Restart abandons the current run, reporting nothing, and starts over. A
// timer or continuation armed by the old run can never touch the new one:
// the registry is swept and the event generation advances.
func (s *Session) Restart() {
	s.Start("")
}

// resetRun sweeps every trace of the previous run. Caller holds the lock.
func (s *Session) resetRun() {
	s.registry.CancelAll()
	s.events.Reset()
	s.media.Stop()
	s.state.Reset(s.cfg.Tuning)
	s.pace.Init(float64(s.cfg.Tuning.GameDurationSeconds)/60, s.cfg.RealSecondsPerGameMinute)
	s.running = false
	s.finished = false
	s.win = false
	s.clicked = false
	s.journal = s.journal[:0]
}

// Close stops the clock and sweeps outstanding timers without persisting.
// The finished flag flips under the lock before the driver is stopped, so a
// tick already dequeued cannot mutate the session after teardown.
func (s *Session) Close() {
	s.mu.Lock()
	s.finished = true
	s.pace.MarkFinished()
	s.registry.CancelAll()
	s.input.Cancel()
	s.media.Stop()
	s.running = false
	s.mu.Unlock()
	s.pace.Stop()
}

// tick is the per-second pipeline, invoked by the pace driver with the lock
// held after the time decrement. Event dispatch never runs on the tick that
// empties the clock; the finish path owns that transition.
func (s *Session) tick() {
	if s.state.TimeLeft <= 0 || s.finished {
		return
	}

	s.state.Working = s.clicked
	s.clicked = false

	// Focus decays passively outside blocking modes and recovers while the
	// phone has the player's attention.
	if !s.state.PhoneDistracted && !s.state.EventActive {
		s.state.AdjustFocus(-s.cfg.Tuning.FocusDecayRate)
		if s.state.Focus <= s.cfg.Tuning.PhoneDistractionThreshold &&
			s.rng.Float64() < s.cfg.Tuning.PhoneTriggerChance {
			s.state.PhoneDistracted = true
			s.state.PhoneClicksRemaining = s.cfg.Tuning.PhoneEscapeClicks
			s.state.Working = false
			s.state.EventMessage = "You grabbed your phone! Click fast to break free!"
			s.publish("phone_distraction", map[string]any{"focus": s.state.Focus})
			s.notifyLocked()
			return
		}
	} else if s.state.PhoneDistracted {
		s.state.AdjustFocus(s.cfg.Tuning.FocusRecoveryRate)
	}

	s.events.MaybeTrigger()
	s.notifyLocked()
}

// deadlineExpired runs outside the lock, exactly once, when time hits zero.
func (s *Session) deadlineExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finishRun(false)
}

// WorkClick is the main verb. During phone distraction the same control
// counts down the escape clicks instead of producing progress.
func (s *Session) WorkClick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || s.state.Paused {
		return ports.ErrConflict
	}

	if s.state.PhoneDistracted {
		if s.state.WorkDisabled {
			return ports.ErrConflict
		}
		s.state.DecrementPhoneClicks()
		if s.state.PhoneClicksRemaining == 0 {
			s.state.PhoneDistracted = false
			s.state.EventMessage = ""
			s.state.AdjustFocus(s.cfg.Tuning.PhoneEscapeFocusReward)
			s.publish("phone_escaped", nil)
		} else {
			s.state.EventMessage = fmt.Sprintf("The phone holds you! %d clicks left.", s.state.PhoneClicksRemaining)
		}
		s.notifyLocked()
		return nil
	}

	if !s.state.WorkAllowed() {
		return ports.ErrConflict
	}
	mult := s.cfg.Tuning.ClickMultiplier(s.state.Focus)
	s.state.IncreaseProgress(s.cfg.Tuning.ProgressPerClick * mult)
	s.state.AdjustFocus(-s.cfg.Tuning.FocusClickPenalty)
	s.state.Working = true
	s.clicked = true
	s.checkWin()
	s.notifyLocked()
	return nil
}

// Pause freezes the clock and the whole verb surface.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || s.state.Paused {
		return ports.ErrConflict
	}
	s.state.Paused = true
	s.state.Working = false
	s.pace.Pause()
	s.publish("pause", nil)
	s.notifyLocked()
	return nil
}

func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || !s.state.Paused {
		return ports.ErrConflict
	}
	s.state.Paused = false
	s.pace.Resume()
	s.publish("resume", nil)
	s.notifyLocked()
	return nil
}

// Choice resolves the pending choice event.
func (s *Session) Choice(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || s.state.Paused {
		return ports.ErrConflict
	}
	if err := s.events.Choose(index); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

// HandleKey routes a physical key press: an armed quick-time event gets it
// first, otherwise it feeds the active mini-challenge.
func (s *Session) HandleKey(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || s.state.Paused {
		return
	}
	if _, ok := s.events.QTE(); ok {
		s.events.HandleQTEKey(code)
	} else {
		s.input.HandleKey(code)
	}
	s.notifyLocked()
}

// HandleText feeds the typing challenge's current input value.
func (s *Session) HandleText(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || s.state.Paused {
		return
	}
	s.input.HandleText(value)
	s.notifyLocked()
}

// ForceEvent triggers a specific story event immediately, bypassing the roll
// but not the busy checks. Meant for demos and content debugging.
func (s *Session) ForceEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || s.state.Paused {
		return ports.ErrConflict
	}
	if err := s.events.StartStoryByID(id); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

// Journal returns a copy of the analytics entries recorded so far this run,
// in append order. A positive limit truncates; the persisted log only
// becomes available after the run finishes, so live reads come from here.
func (s *Session) Journal(limit int) []game.AnalyticsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.journal
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return append([]game.AnalyticsEvent(nil), events...)
}

// UsePowerup applies a one-shot boost from the fixed catalogue. Unknown ids
// map to ErrNotFound so the adapter reports them like any missing resource.
func (s *Session) UsePowerup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished || s.state.Paused {
		return ports.ErrConflict
	}
	p, ok := game.PowerupByID(id)
	if !ok {
		return ports.ErrNotFound
	}
	if p.Focus != 0 {
		s.state.AdjustFocus(p.Focus)
	}
	if p.Progress != 0 {
		s.state.IncreaseProgress(p.Progress)
	}
	s.publish("powerup_used", map[string]any{"powerup": p.ID})
	s.checkWin()
	s.notifyLocked()
	return nil
}

// MediaEnded lets a client report that the current clip finished playing,
// for player adapters that wait on external confirmation.
func (s *Session) MediaEnded() {
	type endNotifier interface{ NotifyEnded() }
	if n, ok := s.media.(endNotifier); ok {
		n.NotifyEnded()
	}
}

// afterEventResolved runs under the lock after any story event or challenge
// resolves: work availability re-derives from flags and a reward that pushed
// progress to the cap ends the run as a win.
func (s *Session) afterEventResolved() {
	s.checkWin()
	s.notifyLocked()
}

// notifyLocked fans a snapshot out to the presentation hook. Caller holds the
// lock; the hook itself never runs under it.
func (s *Session) notifyLocked() {
	if s.OnStateChange == nil {
		return
	}
	snap := s.snapshotLocked()
	go s.OnStateChange(snap)
}

// checkWin ends the run when progress caps outside of a blocking mode.
// Caller holds the lock.
func (s *Session) checkWin() {
	if s.finished || s.state.Progress < 100 {
		return
	}
	if s.state.EventActive || s.state.PhoneDistracted {
		return
	}
	s.finishRun(true)
}

// finishRun is the single terminal transition. Idempotent under the lock:
// the clock stops, every timer is swept, and the snapshot is persisted off
// the lock in one transaction together with the analytics journal.
func (s *Session) finishRun(win bool) {
	s.finished = true
	s.win = win
	s.pace.MarkFinished()
	s.registry.CancelAll()
	s.input.Cancel()
	s.media.Stop()
	s.state.EventActive = false
	s.state.PhoneDistracted = false
	s.state.CurrentEvent = nil
	s.state.Working = false
	if win {
		s.state.EventMessage = "Shipped! The deadline never stood a chance."
	} else {
		s.state.EventMessage = "Time is up. The brain wins this round."
	}

	summary := game.Summary{
		Progress: s.state.Progress,
		TimeLeft: s.state.TimeLeft,
		Focus:    s.state.Focus,
		Win:      win,
	}
	s.publish("finish", map[string]any{"win": win, "progress": summary.Progress})

	record := ports.GameResultRecord{
		SessionID:  s.ID,
		Summary:    summary,
		Epilogues:  append([]game.Epilogue(nil), s.state.Epilogues...),
		FinishedAt: time.Now(),
	}
	journal := append([]game.AnalyticsEvent(nil), s.journal...)

	if s.metrics != nil {
		s.metrics.RecordFinish(win)
	}
	s.notifyLocked()
	go s.persist(record, journal)
	go s.pace.Stop()
}

func (s *Session) persist(record ports.GameResultRecord, journal []game.AnalyticsEvent) {
	if s.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.results.Save(ctx, record); err != nil {
			return err
		}
		if s.analytics != nil {
			return s.analytics.Append(ctx, s.ID, journal)
		}
		return nil
	})
	if err != nil {
		s.logger.Printf("session %s: persist result: %v", s.ID, err)
	}
}

// publish appends one analytics entry and forwards gameplay KPIs. Caller
// holds the lock.
func (s *Session) publish(name string, payload map[string]any) {
	s.journal = append(s.journal, game.AnalyticsEvent{
		Name:       name,
		OccurredAt: time.Now(),
		Payload:    payload,
	})
	if s.metrics == nil {
		return
	}
	switch name {
	case "event_triggered":
		if t, ok := payload["type"].(string); ok {
			s.metrics.RecordEventTriggered(t)
		} else if c, ok := payload["challenge"].(string); ok {
			s.metrics.RecordEventTriggered(c)
		}
	case "challenge_result":
		c, _ := payload["challenge"].(string)
		success, _ := payload["success"].(bool)
		s.metrics.RecordChallengeResult(game.ChallengeType(c), success)
	}
}
