package middleware

import (
	"context"

	"stayloom/internal/app/commands"
)

// ValidatableCommand lets commands self-check before any transaction begins.
type ValidatableCommand interface {
	commands.Command
	Validate() error
}

// Validation rejects malformed commands up front.
func Validation() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if v, ok := cmd.(ValidatableCommand); ok {
				if err := v.Validate(); err != nil {
					return nil, err
				}
			}
			return nextFn(ctx, cmd)
		})
	}
}
