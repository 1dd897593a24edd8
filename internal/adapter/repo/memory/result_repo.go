package memory

import (
	"context"

	"mevsbrain/internal/app/ports"
)

type ResultRepo struct {
	store *Store
}

func NewResultRepo(store *Store) ResultRepo {
	return ResultRepo{store: store}
}

func (r ResultRepo) Save(_ context.Context, record ports.GameResultRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.results = append(r.store.results, record)
	return nil
}

func (r ResultRepo) ListRecent(_ context.Context, limit int) ([]ports.GameResultRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]ports.GameResultRecord, 0, limit)
	for i := len(r.store.results) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, r.store.results[i])
	}
	return out, nil
}
