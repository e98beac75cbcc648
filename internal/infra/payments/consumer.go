package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	BookingApp "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/booking"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
)

// Consumer is the broker-side intake for payment confirmations. It
// dispatches the same confirm command as the HTTP webhook, so a
// processor can deliver over either channel. Malformed or unmatchable
// notifications are acknowledged; stale-state and transient failures
// are returned so the group redelivers.
type Consumer struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

func (c *Consumer) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	conf, err := DecodeConfirmation(msg.Value)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("dropping malformed payment notification", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}

	cmd := BookingApp.ConfirmBookingCommand{
		Reference:       conf.Reference,
		PaymentID:       conf.PaymentID,
		IdempotencyKeyV: conf.Reference + ":" + conf.PaymentID,
	}
	_, err = commands.Dispatch[BookingApp.ConfirmBookingCommand, *BookingApp.ConfirmBookingResult](ctx, c.Commands, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainbooking.ErrReferenceMismatch):
		if c.Logger != nil {
			c.Logger.Warn("ignoring unmatchable payment notification", "reference", conf.Reference, "error", err)
		}
		return nil
	default:
		return err
	}
}
