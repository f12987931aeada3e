package store

import (
	"context"
	"sync"
	"time"

	dErrors "finetrack/pkg/domain-errors"
)

// defaultTxTimeout bounds how long a memory transaction may hold the lock.
const defaultTxTimeout = 5 * time.Second

// MemoryTx serialises multi-step writes against the in-memory store, standing
// in for a database transaction. When fn fails, the writes the store made
// under its context are undone in reverse order.
type MemoryTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{timeout: defaultTxTimeout}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "transaction aborted: context cancelled")
	}

	undo := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, undo)); err != nil {
		undo.rollback()
		return err
	}
	return nil
}

type undoKey struct{}

type undoLog struct {
	mu  sync.Mutex
	fns []func()
}

func (l *undoLog) rollback() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.fns) - 1; i >= 0; i-- {
		l.fns[i]()
	}
	l.fns = nil
}

// onRollback registers fn to run if the enclosing MemoryTx fails. Outside a
// transaction it does nothing.
func onRollback(ctx context.Context, fn func()) {
	l, ok := ctx.Value(undoKey{}).(*undoLog)
	if !ok {
		return
	}
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}
