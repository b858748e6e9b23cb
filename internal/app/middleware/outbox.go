package middleware

import (
	"context"

	"stayloom/internal/app/commands"
	appoutbox "stayloom/internal/app/outbox"
)

// OutboxFlush signals the outbox after a successful command so buffered
// records become eligible for publication. Stores that persist records
// transactionally may treat Flush as a no-op.
func OutboxFlush(ob appoutbox.Outbox) CommandMiddleware {
	if ob == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := ob.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
