package inmemory

import (
	"sync"

	"mevsbrain/internal/domain/game"
)

type Snapshot struct {
	SessionsStarted uint64            `json:"sessions_started"`
	FinishedTotal   uint64            `json:"finished_total"`
	Wins            uint64            `json:"wins"`
	Losses          uint64            `json:"losses"`
	EventsByType    map[string]uint64 `json:"events_by_type"`
	ChallengeWins   map[string]uint64 `json:"challenge_wins"`
	ChallengeFails  map[string]uint64 `json:"challenge_fails"`
}

type Recorder struct {
	mu             sync.Mutex
	started        uint64
	wins           uint64
	losses         uint64
	eventsByType   map[string]uint64
	challengeWins  map[string]uint64
	challengeFails map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		eventsByType:   map[string]uint64{},
		challengeWins:  map[string]uint64{},
		challengeFails: map[string]uint64{},
	}
}

func (r *Recorder) RecordSessionStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *Recorder) RecordFinish(win bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if win {
		r.wins++
	} else {
		r.losses++
	}
}

func (r *Recorder) RecordEventTriggered(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventsByType[eventType]++
}

func (r *Recorder) RecordChallengeResult(challengeType game.ChallengeType, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.challengeWins[string(challengeType)]++
	} else {
		r.challengeFails[string(challengeType)]++
	}
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		SessionsStarted: r.started,
		Wins:            r.wins,
		Losses:          r.losses,
		FinishedTotal:   r.wins + r.losses,
		EventsByType:    make(map[string]uint64, len(r.eventsByType)),
		ChallengeWins:   make(map[string]uint64, len(r.challengeWins)),
		ChallengeFails:  make(map[string]uint64, len(r.challengeFails)),
	}
	for k, v := range r.eventsByType {
		out.EventsByType[k] = v
	}
	for k, v := range r.challengeWins {
		out.ChallengeWins[k] = v
	}
	for k, v := range r.challengeFails {
		out.ChallengeFails[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
