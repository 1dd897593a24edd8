package game

import (
	"errors"
	"time"
)

var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning collects every gameplay number in one place. The defaults mirror
// the shipped balance; all of them can be overridden from configuration.
type Tuning struct {
	GameDurationSeconds int
	ProgressPerClick    float64

	FocusDecayRate    float64
	FocusRecoveryRate float64
	FocusClickPenalty float64

	// Focus tiers scale the work click down as focus drops. Thresholds must
	// be strictly decreasing and multipliers monotonic with them.
	FocusTiers []FocusTier

	PhoneDistractionThreshold float64
	PhoneTriggerChance        float64
	PhoneEscapeClicks         int
	PhoneEscapeFocusReward    float64

	EventBaseChance       float64
	EventProgressBoostCap float64
	EventProgressDivisor  float64
	EventLowFocusBonus    float64
	EventLowFocusCutoff   float64
	EventChanceCap        float64
	ChallengeShare        float64
	EventCooldown         time.Duration

	EffectsBannerTimeout time.Duration
	FailBannerTimeout    time.Duration

	MinTickModifier float64
}

type FocusTier struct {
	Below      float64
	Multiplier float64
}

func DefaultTuning() Tuning {
	return Tuning{
		GameDurationSeconds: 180,
		ProgressPerClick:    0.4,

		FocusDecayRate:    1,
		FocusRecoveryRate: 3,
		FocusClickPenalty: 1,

		FocusTiers: []FocusTier{
			{Below: 70, Multiplier: 0.75},
			{Below: 40, Multiplier: 0.5},
			{Below: 25, Multiplier: 0.25},
		},

		PhoneDistractionThreshold: 45,
		PhoneTriggerChance:        0.15,
		PhoneEscapeClicks:         20,
		PhoneEscapeFocusReward:    22,

		EventBaseChance:       0.08,
		EventProgressBoostCap: 0.15,
		EventProgressDivisor:  900,
		EventLowFocusBonus:    0.06,
		EventLowFocusCutoff:   35,
		EventChanceCap:        0.3,
		ChallengeShare:        0.35,
		EventCooldown:         15 * time.Second,

		EffectsBannerTimeout: 10 * time.Second,
		FailBannerTimeout:    2500 * time.Millisecond,

		MinTickModifier: 0.05,
	}
}

// Validate rejects tunings that would break the monotonic focus scaling or
// stall the clock.
func (t Tuning) Validate() error {
	if t.GameDurationSeconds <= 0 {
		return ErrInvalidTuning
	}
	if t.ProgressPerClick <= 0 {
		return ErrInvalidTuning
	}
	if t.MinTickModifier <= 0 || t.MinTickModifier > 1 {
		return ErrInvalidTuning
	}
	if t.EventChanceCap <= 0 || t.EventChanceCap > 1 {
		return ErrInvalidTuning
	}
	if t.ChallengeShare < 0 || t.ChallengeShare > 1 {
		return ErrInvalidTuning
	}
	prevBelow := 101.0
	prevMult := 1.0
	for _, tier := range t.FocusTiers {
		if tier.Below <= 0 || tier.Below >= prevBelow {
			return ErrInvalidTuning
		}
		if tier.Multiplier <= 0 || tier.Multiplier >= prevMult {
			return ErrInvalidTuning
		}
		prevBelow = tier.Below
		prevMult = tier.Multiplier
	}
	return nil
}

// ClickMultiplier returns the progress multiplier for a work click at the
// given focus. Lower focus never yields a higher multiplier.
func (t Tuning) ClickMultiplier(focus float64) float64 {
	mult := 1.0
	for _, tier := range t.FocusTiers {
		if focus < tier.Below {
			mult = tier.Multiplier
		}
	}
	return mult
}
