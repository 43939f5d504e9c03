package uow

import (
	"context"
	"errors"

	"staybook/internal/domain/shared/fault"
)

// DefaultAttempts bounds Execute when the caller passes a non-positive value.
const DefaultAttempts = 5

// ErrRetriesExhausted is returned when every attempt of a unit collided with a
// concurrent writer. Callers usually re-classify it for their own domain.
var ErrRetriesExhausted = fault.New(fault.KindInternal, "uow: concurrent writers kept winning, giving up")

// Execute runs fn inside a unit of work and commits it. When ctx already
// carries a unit, fn joins it and the outer owner commits. Otherwise a fresh
// unit is started per attempt and the whole body is re-run when the write
// collides with a concurrent transaction (fault.ErrConcurrentUpdate).
func Execute(ctx context.Context, factory UoWFactory, attempts int, fn func(ctx context.Context, unit UnitOfWork) error) error {
	if unit, ok := FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return ErrUnitOfWorkMissing
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := runOnce(ctx, factory, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fault.ErrConcurrentUpdate) {
			return err
		}
		lastErr = err
	}
	return errors.Join(ErrRetriesExhausted, lastErr)
}

func runOnce(ctx context.Context, factory UoWFactory, fn func(ctx context.Context, unit UnitOfWork) error) error {
	unit, err := factory.Begin(ctx, TxOptions{})
	if err != nil {
		return err
	}
	execCtx, hooks := withCommitHooks(Enter(ctx, unit))
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()
	if err := fn(execCtx, unit); err != nil {
		return err
	}
	if err := unit.Commit(execCtx); err != nil {
		return err
	}
	committed = true
	hooks.run(ctx)
	return nil
}

// Read runs fn inside a read-only unit, or the one already in ctx.
func Read(ctx context.Context, factory UoWFactory, fn func(ctx context.Context, unit UnitOfWork) error) error {
	if unit, ok := FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	execCtx := Enter(ctx, unit)
	defer unit.Rollback(execCtx)
	return fn(execCtx, unit)
}
