package shared

import (
	"context"
	"sync"
)

// TransactionScope runs fn inside one unit of work. Repositories resolve the
// active transaction from the context passed to fn, so event handlers that
// are published to from inside fn join the same transaction. Nested calls
// reuse the outer unit of work.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoOpTransactionScope runs fn directly. Useful for tests.
type NoOpTransactionScope struct{}

// Execute runs fn and then the commit hooks registered during it, if fn succeeded
func (NoOpTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInCommitScope(ctx, fn)
}

type commitHooksKey struct{}

type commitHooks struct {
	mu    sync.Mutex
	hooks []func(ctx context.Context)
}

// AfterCommit defers fn until the surrounding unit of work commits. Outside
// a unit of work fn runs immediately. Hooks of a rolled back unit of work
// are dropped.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	h, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}

// InCommitScope reports whether ctx belongs to an open unit of work
func InCommitScope(ctx context.Context) bool {
	_, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	return ok
}

// RunInCommitScope runs fn with a fresh hook list and fires the hooks after
// fn returns nil. If ctx already carries a hook list fn simply joins it.
func RunInCommitScope(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInCommitScopeWith(ctx, fn, func(inner context.Context, work func(context.Context) error) error {
		return work(inner)
	})
}

// RunInCommitScopeWith is RunInCommitScope with a wrapper that performs the
// actual commit, e.g. a database transaction. Hooks fire only after wrap
// returns nil. wrap may derive the context it hands to work.
func RunInCommitScopeWith(
	ctx context.Context,
	fn func(ctx context.Context) error,
	wrap func(ctx context.Context, work func(ctx context.Context) error) error,
) error {
	if InCommitScope(ctx) {
		return fn(ctx)
	}

	h := &commitHooks{}
	inner := context.WithValue(ctx, commitHooksKey{}, h)
	if err := wrap(inner, fn); err != nil {
		return err
	}

	h.mu.Lock()
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()

	// Hooks run outside the unit of work.
	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}
