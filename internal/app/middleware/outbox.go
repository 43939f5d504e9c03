package middleware

import (
	"context"
	"log/slog"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
)

// OutboxFlush hands events committed by a successful command to the outbox
// relay. The command has already committed, so a failed flush is only logged
// and the events stay queued for the next one.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				logger.WarnContext(ctx, "outbox flush failed", "command", cmd.Key(), "error", err)
			}
			return res, nil
		})
	}
}
