package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/gymflow-backend/internal/data/aggregates"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
)

// InjectedTxRunner counts transaction outcomes and injects failures.
// With DB set the body runs inside a real transaction, so an injected commit
// failure rolls back everything the body wrote.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.count(&r.RollbackCalls)
		return failBeforeBody
	}
	if fn == nil {
		r.count(&r.CommitCalls)
		return nil
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if bodyErr := fn(dbctx.Context{Ctx: ctx, Tx: tx}); bodyErr != nil {
				return bodyErr
			}
			return failCommit
		})
	} else {
		err = fn(dbctx.Context{Ctx: ctx})
		if err == nil {
			err = failCommit
		}
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
