package aggregates

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/dbctx"
)

// TxRunner provides the transaction boundary for multi-row writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return faults.New(faults.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// RequireCASSuccess turns a guarded write that matched no rows into a conflict.
func RequireCASSuccess(op string, ok bool, message string) error {
	if ok {
		return nil
	}
	return faults.Conflict(op, "%s", message)
}
