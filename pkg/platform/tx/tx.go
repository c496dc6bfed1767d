// Package tx provides the transaction boundary used by issuance and credential
// services. Nested RunInTx calls join the outermost boundary through the context,
// so a mint started by the issuance service commits or rolls back as one unit.
package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "zkid/pkg/domain-errors"
)

// Runner provides a transactional boundary for store mutations.
// Implementations may wrap a database transaction or an in-memory lock.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultTimeout bounds a transaction whose context carries no deadline.
const DefaultTimeout = 5 * time.Second

type sqlTxKey struct{}

type memTxKey struct{}

type commitHooksKey struct{}

// commitHooks belong to one outermost boundary and are only touched by the
// goroutine running it.
type commitHooks struct {
	fns []func()
}

func withCommitHooks(ctx context.Context) (context.Context, *commitHooks) {
	h := &commitHooks{}
	return context.WithValue(ctx, commitHooksKey{}, h), h
}

func (h *commitHooks) run() {
	for _, fn := range h.fns {
		fn()
	}
}

// AfterCommit defers fn until the outermost boundary in ctx commits. It is
// dropped if that boundary rolls back. Without a boundary fn runs at once.
func AfterCommit(ctx context.Context, fn func()) {
	if h, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok {
		h.fns = append(h.fns, fn)
		return
	}
	fn()
}

// WithTx returns a context carrying an open SQL transaction.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, sqlTxKey{}, tx)
}

// From returns the SQL transaction carried by ctx, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// Executor is the subset of *sql.DB and *sql.Tx used by Postgres stores.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ExecutorFor returns the transaction in ctx when present, otherwise db.
func ExecutorFor(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// InMemory serializes mutations for in-memory stores. In-memory stores must
// validate before mutating so an error inside fn leaves no partial writes.
type InMemory struct {
	mu      sync.Mutex
	timeout time.Duration
}

// NewInMemory constructs an in-memory transaction boundary.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (t *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if owner, ok := ctx.Value(memTxKey{}).(*InMemory); ok && owner == t {
		return fn(ctx)
	}

	ctx, cancel := withDeadline(ctx, t.timeout)
	defer cancel()

	ctx, hooks := withCommitHooks(context.WithValue(ctx, memTxKey{}, t))
	if err := t.locked(ctx, fn); err != nil {
		return err
	}
	hooks.run()
	return nil
}

func (t *InMemory) locked(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// Postgres runs fn inside a database/sql transaction.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres constructs a PostgreSQL transaction boundary.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (t *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel := withDeadline(ctx, t.timeout)
	defer cancel()

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	ctx, hooks := withCommitHooks(WithTx(ctx, sqlTx))
	if err := fn(ctx); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	hooks.run()
	return nil
}
