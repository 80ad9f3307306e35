package memory

import (
	"context"
	"sync"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
)

type txKey struct{}

type undoLog struct {
	mu    sync.Mutex
	steps []func()
}

func (l *undoLog) push(step func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *undoLog) rollback() {
	l.mu.Lock()
	steps := l.steps
	l.steps = nil
	l.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// recordUndo registers step to run if the surrounding unit of work fails. Writes
// made outside a unit of work are final.
func recordUndo(ctx context.Context, step func()) {
	if log, ok := ctx.Value(txKey{}).(*undoLog); ok {
		log.push(step)
	}
}

var _ domain.UnitOfWork = UnitOfWork{}

// UnitOfWork gives the memory repositories all-or-nothing semantics by undoing
// the writes of a failed fn in reverse order. Isolation comes from the account
// locks the caller holds, not from the unit of work.
type UnitOfWork struct{}

func NewUnitOfWork() UnitOfWork {
	return UnitOfWork{}
}

func (UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txKey{}).(*undoLog); nested {
		return fn(ctx)
	}

	log := &undoLog{}
	txCtx := context.WithValue(ctx, txKey{}, log)

	committed := false
	defer func() {
		if !committed {
			log.rollback()
		}
	}()

	if err := fn(txCtx); err != nil {
		return err
	}

	committed = true
	return nil
}
