package middleware

import (
	"context"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/outbox"
)

// OutboxFlush nudges the outbox after a successful command. With the
// store-backed outbox this is a no-op (the worker polls); the memory
// outbox delivers synchronously here.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
