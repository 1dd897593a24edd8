package event

import (
	"log"
	"sync"

	"mevsbrain/internal/app/pace"
	"mevsbrain/internal/app/timers"
	"mevsbrain/internal/domain/game"
)

// Applier routes declarative outcome effects into the live run. Temporary
// effects arm their reset through the timer registry, so a run reset sweeps
// them together with everything else. Callers hold the session lock.
type Applier struct {
	mu       sync.Locker
	state    *game.State
	pace     *pace.Deadline
	registry *timers.Registry
	logger   *log.Logger
}

func NewApplier(mu sync.Locker, state *game.State, p *pace.Deadline, registry *timers.Registry, logger *log.Logger) *Applier {
	if logger == nil {
		logger = log.Default()
	}
	return &Applier{mu: mu, state: state, pace: p, registry: registry, logger: logger}
}

// Apply dispatches every effect and returns the banner description. Unknown
// kinds are logged and skipped so a content mistake cannot take the run down.
func (a *Applier) Apply(effects []game.Effect) string {
	for _, e := range effects {
		switch e.Kind {
		case game.EffectModifyTime:
			if e.Value >= 0 {
				a.state.IncrementTimeLeft(e.Value)
			} else {
				a.pace.ApplyTimePenalty(e.Value)
			}
		case game.EffectModifyProgress:
			a.state.AdjustProgress(e.Value)
		case game.EffectModifyProgressRate:
			a.state.ProgressRateModifier = e.Value
			a.registry.Arm(timers.RateModifier, e.Duration, func() {
				a.mu.Lock()
				a.state.ProgressRateModifier = 1
				a.mu.Unlock()
			})
		case game.EffectDisableWork:
			a.state.WorkDisabled = true
			a.state.Working = false
			a.registry.Arm(timers.WorkDisable, e.Duration, func() {
				a.mu.Lock()
				a.state.WorkDisabled = false
				a.mu.Unlock()
			})
		default:
			a.logger.Printf("skipping unknown effect kind %q", e.Kind)
		}
	}
	return game.DescribeEffects(effects)
}
