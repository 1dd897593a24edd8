package memory

import (
	"sync"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

// Store is the in-process fallback for running without Postgres. Repos lock
// the store themselves; the TxManager only serializes whole transactions.
type Store struct {
	mu        sync.RWMutex
	results   []ports.GameResultRecord
	analytics map[string][]game.AnalyticsEvent
}

func NewStore() *Store {
	return &Store{
		analytics: make(map[string][]game.AnalyticsEvent),
	}
}
