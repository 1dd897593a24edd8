package game

import (
	"math/rand"
	"time"
)

type ChallengeType string

const (
	ChallengeKeySpam    ChallengeType = "key_spam_challenge"
	ChallengeComboInput ChallengeType = "combo_input_challenge"
	ChallengeTyping     ChallengeType = "typing_challenge"
)

// Challenge is one randomized mini-challenge instance. Built fresh for every
// trigger; never persisted.
type Challenge struct {
	Type         ChallengeType
	Title        string
	Instructions string
	Duration     time.Duration

	// key spam
	TargetKey    string
	TargetLabel  string
	RequiredHits int

	// combo input
	Sequence        []string
	SequenceLabels  []string
	AllowedMistakes int

	// typing
	Phrase            string
	PenaltyPerMistake float64

	Success ChallengeReward
	Fail    ChallengePenalty
}

type ChallengeReward struct {
	ProgressAdjustment float64
}

type ChallengePenalty struct {
	TimePenalty float64
}

// Physical key codes and their display labels; index-aligned. Matching on
// codes keeps challenges keyboard-layout independent.
var challengeKeyCodes = []string{
	"KeyA", "KeyS", "KeyD", "KeyF", "KeyJ", "KeyK", "KeyL",
	"KeyQ", "KeyW", "KeyE", "KeyR", "KeyT", "KeyY", "KeyU",
}

var challengeKeyLabels = []string{
	"A", "S", "D", "F", "J", "K", "L",
	"Q", "W", "E", "R", "T", "Y", "U",
}

var comboPools = [][]string{
	{"KeyW", "KeyS", "KeyD"},
	{"KeyJ", "KeyK", "KeyL"},
	{"KeyQ", "KeyW", "KeyE", "KeyR"},
}

var typingPhrases = []string{
	"code until sunrise",
	"no doomscrolling today",
	"ship before the deadline",
	"only coffee and code",
	"nothing can distract me",
	"deadlines are motivation",
	"I will finish this task",
	"focus is a skill",
	"one more commit and done",
	"my brain works for me",
}

// ChallengeTemplates lists the available template ids.
var ChallengeTemplates = []ChallengeType{
	ChallengeKeySpam,
	ChallengeComboInput,
	ChallengeTyping,
}

// BuildChallenge instantiates a template with fresh random parameters.
// Returns nil for an unknown template id.
func BuildChallenge(id ChallengeType, rng *rand.Rand) *Challenge {
	switch id {
	case ChallengeKeySpam:
		i := rng.Intn(len(challengeKeyCodes))
		return &Challenge{
			Type:         ChallengeKeySpam,
			Title:        "Key mash",
			Instructions: "Hammer the shown key until the counter runs out.",
			Duration:     4500 * time.Millisecond,
			TargetKey:    challengeKeyCodes[i],
			TargetLabel:  challengeKeyLabels[i],
			RequiredHits: 15,
			Success:      ChallengeReward{ProgressAdjustment: 1.5},
			Fail:         ChallengePenalty{TimePenalty: 8},
		}
	case ChallengeComboInput:
		pool := comboPools[rng.Intn(len(comboPools))]
		length := len(pool)
		if length < 3 {
			length = 3
		}
		if length > 5 {
			length = 5
		}
		sequence := make([]string, 0, length)
		labels := make([]string, 0, length)
		for len(sequence) < length {
			code := pool[rng.Intn(len(pool))]
			sequence = append(sequence, code)
			labels = append(labels, labelForCode(code))
		}
		return &Challenge{
			Type:            ChallengeComboInput,
			Title:           "Combo input",
			Instructions:    "Repeat the key sequence in order.",
			Duration:        3500 * time.Millisecond,
			Sequence:        sequence,
			SequenceLabels:  labels,
			AllowedMistakes: 1,
			Success:         ChallengeReward{ProgressAdjustment: 2.5},
			Fail:            ChallengePenalty{TimePenalty: 7},
		}
	case ChallengeTyping:
		return &Challenge{
			Type:              ChallengeTyping,
			Title:             "Speed typing",
			Instructions:      "Type the phrase without mistakes. Every mistake eats time.",
			Duration:          8 * time.Second,
			Phrase:            typingPhrases[rng.Intn(len(typingPhrases))],
			PenaltyPerMistake: 2,
			Success:           ChallengeReward{ProgressAdjustment: 4},
			Fail:              ChallengePenalty{TimePenalty: 5},
		}
	default:
		return nil
	}
}

func labelForCode(code string) string {
	for i, c := range challengeKeyCodes {
		if c == code {
			return challengeKeyLabels[i]
		}
	}
	return code
}

// QTEKey picks a random physical key for quick-time events.
func QTEKey(rng *rand.Rand) (code, label string) {
	codes := []string{"KeyQ", "KeyW", "KeyE", "KeyR", "KeyA", "KeyS", "KeyD", "KeyF"}
	labels := []string{"Q", "W", "E", "R", "A", "S", "D", "F"}
	i := rng.Intn(len(codes))
	return codes[i], labels[i]
}
