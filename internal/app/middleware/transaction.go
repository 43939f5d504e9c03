package middleware

import (
	"context"
	"errors"

	"staybook/internal/app/commands"
	"staybook/internal/app/uow"
)

// ContendedCommand names the error surfaced when every attempt of a command
// lost its write race against concurrent writers.
type ContendedCommand interface {
	commands.Command
	ContentionError() error
}

// Transaction runs each command inside a unit of work, re-running the whole
// handler on optimistic-concurrency collisions up to attempts times.
func Transaction(factory uow.UoWFactory, attempts int) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			var res any
			err := uow.Execute(ctx, factory, attempts, func(ctx context.Context, _ uow.UnitOfWork) error {
				var err error
				res, err = nextFn(ctx, cmd)
				return err
			})
			if err != nil {
				if contended, ok := cmd.(ContendedCommand); ok && errors.Is(err, uow.ErrRetriesExhausted) {
					return nil, errors.Join(contended.ContentionError(), err)
				}
				return nil, err
			}
			return res, nil
		})
	}
}
