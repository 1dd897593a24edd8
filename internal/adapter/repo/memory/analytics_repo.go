package memory

import (
	"context"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

type AnalyticsRepo struct {
	store *Store
}

func NewAnalyticsRepo(store *Store) AnalyticsRepo {
	return AnalyticsRepo{store: store}
}

func (r AnalyticsRepo) Append(_ context.Context, sessionID string, events []game.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.analytics[sessionID] = append(r.store.analytics[sessionID], events...)
	return nil
}

func (r AnalyticsRepo) ListBySessionID(_ context.Context, sessionID string, limit int) ([]game.AnalyticsEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events, ok := r.store.analytics[sessionID]
	if !ok || len(events) == 0 {
		return nil, ports.ErrNotFound
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	out := make([]game.AnalyticsEvent, len(events))
	copy(out, events)
	return out, nil
}
