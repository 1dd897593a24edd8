package timers

import (
	"sync"
	"time"
)

// Purpose keys. One timer may be armed per purpose; re-arming replaces the
// previous schedule.
const (
	RateModifier  = "rate_modifier"
	WorkDisable   = "work_disable"
	Slowdown      = "slowdown"
	Challenge     = "challenge"
	QTE           = "qte"
	EffectsBanner = "effects_banner"
	FailBanner    = "fail_banner"
)

// Registry holds every scheduled callback of a session keyed by purpose, so
// a run reset can cancel all of them in one sweep instead of chasing ad hoc
// handles. Callbacks fire on their own goroutine; callers are expected to
// re-check run ownership before mutating shared state.
type Registry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRegistry() *Registry {
	return &Registry{timers: make(map[string]*time.Timer)}
}

// Arm schedules fn after d, replacing any timer already armed for the same
// purpose. A non-positive duration only cancels the previous schedule.
func (r *Registry) Arm(purpose string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.timers[purpose]; ok {
		prev.Stop()
		delete(r.timers, purpose)
	}
	if d <= 0 || fn == nil {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		if r.timers[purpose] == timer {
			delete(r.timers, purpose)
		}
		r.mu.Unlock()
		fn()
	})
	r.timers[purpose] = timer
}

// Cancel stops the timer for one purpose, if armed.
func (r *Registry) Cancel(purpose string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.timers[purpose]; ok {
		prev.Stop()
		delete(r.timers, purpose)
	}
}

// CancelAll sweeps every armed timer. Called on run reset and on finish so a
// timer from run N can never mutate run N+1.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for purpose, timer := range r.timers {
		timer.Stop()
		delete(r.timers, purpose)
	}
}

// Armed reports whether a timer is currently scheduled for the purpose.
func (r *Registry) Armed(purpose string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[purpose]
	return ok
}
