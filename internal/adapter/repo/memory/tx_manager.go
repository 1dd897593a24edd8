package memory

import (
	"context"
	"sync"
)

// TxManager runs transactions one at a time. There is no rollback; the
// memory store is a development convenience, not a durability promise.
type TxManager struct {
	store *Store
	txMu  *sync.Mutex
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store, txMu: &sync.Mutex{}}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()
	return fn(ctx)
}
