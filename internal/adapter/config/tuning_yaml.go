package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mevsbrain/internal/domain/game"
)

type yamlTuning struct {
	GameDurationSeconds int     `yaml:"game_duration_seconds"`
	ProgressPerClick    float64 `yaml:"progress_per_click"`

	FocusDecayRate    float64 `yaml:"focus_decay_rate"`
	FocusRecoveryRate float64 `yaml:"focus_recovery_rate"`
	FocusClickPenalty float64 `yaml:"focus_click_penalty"`

	FocusTiers []yamlFocusTier `yaml:"focus_tiers"`

	PhoneDistractionThreshold float64 `yaml:"phone_distraction_threshold"`
	PhoneTriggerChance        float64 `yaml:"phone_trigger_chance"`
	PhoneEscapeClicks         int     `yaml:"phone_escape_clicks"`
	PhoneEscapeFocusReward    float64 `yaml:"phone_escape_focus_reward"`

	EventBaseChance       float64 `yaml:"event_base_chance"`
	EventProgressBoostCap float64 `yaml:"event_progress_boost_cap"`
	EventProgressDivisor  float64 `yaml:"event_progress_divisor"`
	EventLowFocusBonus    float64 `yaml:"event_low_focus_bonus"`
	EventLowFocusCutoff   float64 `yaml:"event_low_focus_cutoff"`
	EventChanceCap        float64 `yaml:"event_chance_cap"`
	ChallengeShare        float64 `yaml:"challenge_share"`
	EventCooldownSeconds  int     `yaml:"event_cooldown_seconds"`

	EffectsBannerSeconds int `yaml:"effects_banner_seconds"`
	FailBannerMillis     int `yaml:"fail_banner_millis"`

	MinTickModifier float64 `yaml:"min_tick_modifier"`
}

type yamlFocusTier struct {
	Below      float64 `yaml:"below"`
	Multiplier float64 `yaml:"multiplier"`
}

// LoadTuning reads gameplay tuning from YAML, applied on top of the shipped
// defaults. A missing file yields the defaults; a present but invalid file
// is an error, never a silently half-applied balance.
func LoadTuning(path string) (game.Tuning, error) {
	tuning := game.DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tuning, nil
		}
		return tuning, fmt.Errorf("read tuning file: %w", err)
	}

	var fileData yamlTuning
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return tuning, fmt.Errorf("parse tuning yaml: %w", err)
	}

	applyYamlTuning(&tuning, fileData)
	if err := tuning.Validate(); err != nil {
		return game.DefaultTuning(), fmt.Errorf("tuning %s: %w", path, err)
	}
	return tuning, nil
}

func applyYamlTuning(tuning *game.Tuning, fileData yamlTuning) {
	if fileData.GameDurationSeconds > 0 {
		tuning.GameDurationSeconds = fileData.GameDurationSeconds
	}
	if fileData.ProgressPerClick > 0 {
		tuning.ProgressPerClick = fileData.ProgressPerClick
	}
	if fileData.FocusDecayRate > 0 {
		tuning.FocusDecayRate = fileData.FocusDecayRate
	}
	if fileData.FocusRecoveryRate > 0 {
		tuning.FocusRecoveryRate = fileData.FocusRecoveryRate
	}
	if fileData.FocusClickPenalty > 0 {
		tuning.FocusClickPenalty = fileData.FocusClickPenalty
	}
	if len(fileData.FocusTiers) > 0 {
		tiers := make([]game.FocusTier, 0, len(fileData.FocusTiers))
		for _, t := range fileData.FocusTiers {
			tiers = append(tiers, game.FocusTier{Below: t.Below, Multiplier: t.Multiplier})
		}
		tuning.FocusTiers = tiers
	}
	if fileData.PhoneDistractionThreshold > 0 {
		tuning.PhoneDistractionThreshold = fileData.PhoneDistractionThreshold
	}
	if fileData.PhoneTriggerChance > 0 {
		tuning.PhoneTriggerChance = fileData.PhoneTriggerChance
	}
	if fileData.PhoneEscapeClicks > 0 {
		tuning.PhoneEscapeClicks = fileData.PhoneEscapeClicks
	}
	if fileData.PhoneEscapeFocusReward > 0 {
		tuning.PhoneEscapeFocusReward = fileData.PhoneEscapeFocusReward
	}
	if fileData.EventBaseChance > 0 {
		tuning.EventBaseChance = fileData.EventBaseChance
	}
	if fileData.EventProgressBoostCap > 0 {
		tuning.EventProgressBoostCap = fileData.EventProgressBoostCap
	}
	if fileData.EventProgressDivisor > 0 {
		tuning.EventProgressDivisor = fileData.EventProgressDivisor
	}
	if fileData.EventLowFocusBonus > 0 {
		tuning.EventLowFocusBonus = fileData.EventLowFocusBonus
	}
	if fileData.EventLowFocusCutoff > 0 {
		tuning.EventLowFocusCutoff = fileData.EventLowFocusCutoff
	}
	if fileData.EventChanceCap > 0 {
		tuning.EventChanceCap = fileData.EventChanceCap
	}
	if fileData.ChallengeShare > 0 {
		tuning.ChallengeShare = fileData.ChallengeShare
	}
	if fileData.EventCooldownSeconds > 0 {
		tuning.EventCooldown = time.Duration(fileData.EventCooldownSeconds) * time.Second
	}
	if fileData.EffectsBannerSeconds > 0 {
		tuning.EffectsBannerTimeout = time.Duration(fileData.EffectsBannerSeconds) * time.Second
	}
	if fileData.FailBannerMillis > 0 {
		tuning.FailBannerTimeout = time.Duration(fileData.FailBannerMillis) * time.Millisecond
	}
	if fileData.MinTickModifier > 0 {
		tuning.MinTickModifier = fileData.MinTickModifier
	}
}
