package pace

import (
	"math"
	"sync"
	"time"

	"mevsbrain/internal/app/timers"
	"mevsbrain/internal/domain/game"
)

// Config contains runtime options for the deadline driver.
type Config struct {
	// Interval is the real-time tick period. One second in production;
	// tests shrink it.
	Interval time.Duration
	// MinTickModifier is the floor for slowdown ratios so the clock can
	// never freeze entirely.
	MinTickModifier float64
}

// Deadline converts wall-clock ticks into deadline depletion at a
// configurable pace and drives the per-second game tick.
//
// Locking convention: the session lock passed at construction serializes all
// game mutation. Every method except Start and Stop expects the caller to
// hold that lock; the ticker goroutine acquires it itself around each step.
// OnTick runs with the lock held, right after the time decrement. OnFinish
// runs without the lock, exactly once per run.
type Deadline struct {
	mu       sync.Locker
	state    *game.State
	registry *timers.Registry
	cfg      Config

	secondsPerTick float64
	tickModifier   float64
	paused         bool
	finished       bool
	// gen identifies the current run. Guarded by the session lock; a tick
	// dequeued before a reset carries the old value and is discarded.
	gen uint64

	OnTick   func()
	OnFinish func()

	lifecycle sync.Mutex
	stopCh    chan struct{}
	running   bool
}

func NewDeadline(mu sync.Locker, state *game.State, registry *timers.Registry, cfg Config) *Deadline {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.MinTickModifier <= 0 {
		cfg.MinTickModifier = 0.05
	}
	return &Deadline{
		mu:             mu,
		state:          state,
		registry:       registry,
		cfg:            cfg,
		secondsPerTick: 1,
		tickModifier:   1,
	}
}

// Init sets the deadline budget and derives how many game seconds elapse per
// real-time tick. Clears any leftover slowdown and advances the run
// generation, invalidating any tick still in flight from the previous run.
func (d *Deadline) Init(totalGameMinutes, realSecondsPerGameMinute float64) {
	d.state.TimeLeft = totalGameMinutes * 60
	d.secondsPerTick = 60 / realSecondsPerGameMinute
	d.tickModifier = 1
	d.finished = false
	d.gen++
	d.registry.Cancel(timers.Slowdown)
}

// Start launches the ticking goroutine for the current generation, replacing
// any previous driver. Safe under concurrent calls: the stop-and-replace
// happens under the lifecycle mutex, so no driver is ever orphaned.
func (d *Deadline) Start() {
	d.mu.Lock()
	gen := d.gen
	d.mu.Unlock()

	d.lifecycle.Lock()
	if d.running {
		close(d.stopCh)
	}
	d.stopCh = make(chan struct{})
	d.running = true
	stopCh := d.stopCh
	d.lifecycle.Unlock()
	go d.run(stopCh, gen)
}

// Stop terminates the ticking goroutine. Idempotent.
func (d *Deadline) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if !d.running {
		return
	}
	close(d.stopCh)
	d.running = false
}

func (d *Deadline) run(stopCh chan struct{}, gen uint64) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			d.step(gen)
		}
	}
}

// step applies one tick. The generation check closes the window where a tick
// already dequeued from the ticker blocks on the session lock across a run
// reset: by the time it acquires the lock, the generation has moved on.
func (d *Deadline) step(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.paused || d.finished {
		d.mu.Unlock()
		return
	}
	d.state.DecrementTimeLeft(d.secondsPerTick * d.tickModifier)
	if d.OnTick != nil {
		d.OnTick()
	}
	finished := d.state.TimeLeft <= 0
	if finished {
		d.finished = true
	}
	d.mu.Unlock()

	if finished {
		d.Stop()
		if d.OnFinish != nil {
			d.OnFinish()
		}
	}
}

// Pause suspends tick effects without tearing the interval down, so resuming
// does not lose sub-second phase.
func (d *Deadline) Pause() { d.paused = true }

func (d *Deadline) Resume() { d.paused = false }

// MarkFinished stops further depletion once the session has ended through
// another path (win, restart).
func (d *Deadline) MarkFinished() { d.finished = true }

// ApplyTimePenalty immediately subtracts |seconds| from the deadline. It
// never adds time.
func (d *Deadline) ApplyTimePenalty(seconds float64) {
	if seconds == 0 {
		return
	}
	d.state.DecrementTimeLeft(math.Abs(seconds))
}

// ApplyTimeSlowdown multiplies the tick size by ratio (floored at the
// configured minimum) until the duration elapses, then auto-resets to 1.
// Re-invoking replaces the previous schedule rather than stacking.
func (d *Deadline) ApplyTimeSlowdown(ratio float64, duration time.Duration) {
	d.tickModifier = math.Max(d.cfg.MinTickModifier, ratio)
	if duration <= 0 {
		return
	}
	d.registry.Arm(timers.Slowdown, duration, func() {
		d.mu.Lock()
		d.tickModifier = 1
		d.mu.Unlock()
	})
}

// TickModifier reports the current slowdown multiplier.
func (d *Deadline) TickModifier() float64 { return d.tickModifier }
