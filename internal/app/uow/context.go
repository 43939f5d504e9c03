package uow

import (
	"context"

	"staybook/internal/domain/shared/fault"
)

var ErrUnitOfWorkMissing = fault.New(fault.KindInternal, "uow: unit of work missing from context")

type ctxKey struct{}

// ContextWithUnitOfWork stores the provided unit of work in context.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

// FromContext retrieves a unit of work from context if present.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	val := ctx.Value(ctxKey{})
	if val == nil {
		return nil, false
	}
	unit, ok := val.(UnitOfWork)
	return unit, ok
}

type commitHooksKey struct{}

type commitHooks struct {
	fns []func(ctx context.Context)
}

// AfterCommit defers fn until the unit of work that owns ctx has committed.
// Hooks registered by an attempt that is rolled back are dropped with it.
// Outside any owned unit fn runs immediately.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	hooks.fns = append(hooks.fns, fn)
}

func withCommitHooks(ctx context.Context) (context.Context, *commitHooks) {
	hooks := &commitHooks{}
	return context.WithValue(ctx, commitHooksKey{}, hooks), hooks
}

func (h *commitHooks) run(ctx context.Context) {
	for _, fn := range h.fns {
		fn(ctx)
	}
}
