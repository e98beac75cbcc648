package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/dto"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/middleware"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/outbox"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/policies"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

var ErrNotBookingOwner = errors.New("booking: only the booking guest may cancel")

type CancelBookingCommand struct {
	BookingID       string
	GuestID         string
	Reason          string
	IdempotencyKeyV string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CancelBookingCommand) ResultPrototype() any { return &CancelBookingResult{} }

type CancelBookingResult struct {
	BookingID string       `json:"booking_id"`
	Status    string       `json:"status"`
	Refund    dto.MoneyDTO `json:"refund"`
	Penalty   dto.MoneyDTO `json:"penalty"`
}

// CancelBookingHandler cancels a confirmed booking, releases its dates
// and settles the refund per the policy frozen at request time.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if cmd.GuestID != "" && b.GuestID != cmd.GuestID {
		return nil, ErrNotBookingOwner
	}

	now := h.now()
	refund, penalty, err := b.Cancel(cmd.Reason, now)
	if err != nil {
		return nil, err
	}

	if err := h.release(ctx, unit, b, now); err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	// The refund moves after commit: losing it here leaves a cancelled
	// booking the payment processor can still be reconciled against,
	// the reverse would hand money back for a stay we may still hold.
	if refund.Amount > 0 && b.PaymentID != "" && h.Payments != nil {
		if err := h.Payments.Refund(ctx, b.PaymentID, refund, cmd.Reason); err != nil && h.Logger != nil {
			h.Logger.Warn("refund call failed, left for reconciliation",
				"booking_id", b.ID, "payment_id", b.PaymentID, "error", err)
		}
	}

	return &CancelBookingResult{
		BookingID: string(b.ID),
		Status:    string(b.State),
		Refund:    dto.MapMoney(refund),
		Penalty:   dto.MapMoney(penalty),
	}, nil
}

// release drops the booking's occupancy block with the same
// compare-and-set retry used at confirmation.
func (h *CancelBookingHandler) release(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, now time.Time) error {
	for attempt := 0; attempt < 2; attempt++ {
		calendar, err := unit.Occupancy().Calendar(ctx, b.PropertyID)
		if err != nil {
			return err
		}
		if err := calendar.Release(string(b.ID), now); err != nil {
			if errors.Is(err, domainavailability.ErrRangeNotFound) {
				// Already released; nothing to undo.
				return nil
			}
			return err
		}
		if err := unit.Occupancy().Save(ctx, calendar); err != nil {
			if errors.Is(err, domainavailability.ErrVersionConflict) {
				continue
			}
			return err
		}
		pending := calendar.PendingEvents()
		calendar.ClearEvents()
		return outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending)
	}
	return domainbooking.ErrStaleState
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CancelBookingCommand)(nil)
