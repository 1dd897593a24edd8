package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

// TxManager implements ports.TxManager over a gorm transaction. The result
// record and the analytics journal of a finished run commit or roll back
// together through it.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return TxManager{db: db}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
