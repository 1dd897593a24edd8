package game

import (
	"fmt"
	"strings"
	"time"
)

// EffectKind is a closed enumeration; adding a kind means touching every
// switch over it.
type EffectKind int

const (
	EffectUnknown EffectKind = iota
	EffectModifyTime
	EffectModifyProgress
	EffectModifyProgressRate
	EffectDisableWork
)

// Effect is a declarative outcome mutation. Value carries seconds for
// modify_time, percent points for modify_progress and a multiplier for
// modify_progress_rate; Duration only applies to the temporary kinds.
type Effect struct {
	Kind     EffectKind
	Value    float64
	Duration time.Duration
}

func ParseEffectKind(raw string) EffectKind {
	switch raw {
	case "modify_time":
		return EffectModifyTime
	case "modify_progress":
		return EffectModifyProgress
	case "modify_progress_rate":
		return EffectModifyProgressRate
	case "disable_work":
		return EffectDisableWork
	default:
		return EffectUnknown
	}
}

func (k EffectKind) String() string {
	switch k {
	case EffectModifyTime:
		return "modify_time"
	case EffectModifyProgress:
		return "modify_progress"
	case EffectModifyProgressRate:
		return "modify_progress_rate"
	case EffectDisableWork:
		return "disable_work"
	default:
		return "unknown"
	}
}

// DescribeEffects renders the transient banner shown after an outcome. Pure.
func DescribeEffects(effects []Effect) string {
	if len(effects) == 0 {
		return "The event passed without consequences."
	}
	parts := make([]string, 0, len(effects))
	for _, e := range effects {
		switch e.Kind {
		case EffectModifyTime:
			if e.Value > 0 {
				parts = append(parts, fmt.Sprintf("+%g seconds", e.Value))
			} else {
				parts = append(parts, fmt.Sprintf("%g seconds", e.Value))
			}
		case EffectModifyProgress:
			if e.Value > 0 {
				parts = append(parts, fmt.Sprintf("+%g%% progress", e.Value))
			} else {
				parts = append(parts, fmt.Sprintf("%g%% progress", e.Value))
			}
		case EffectModifyProgressRate:
			parts = append(parts, fmt.Sprintf("work speed x%g (%ds)", e.Value, int(e.Duration.Seconds())))
		case EffectDisableWork:
			parts = append(parts, fmt.Sprintf("work blocked (%ds)", int(e.Duration.Seconds())))
		default:
			parts = append(parts, "unknown effect")
		}
	}
	return strings.Join(parts, " • ")
}
