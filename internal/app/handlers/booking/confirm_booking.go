package booking

import (
	"context"
	"errors"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/middleware"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/outbox"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
)

const confirmBookingKey = "booking.confirm"

type ConfirmBookingCommand struct {
	Reference       string
	PaymentID       string
	IdempotencyKeyV string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

func (c ConfirmBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ConfirmBookingCommand) ResultPrototype() any { return &ConfirmBookingResult{} }

type ConfirmBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ConfirmBookingHandler turns a verified payment notification into a
// confirmed booking. The occupancy calendar is re-read and re-reserved
// here under a version-guarded save, so of two racing confirmations for
// overlapping dates exactly one wins; the loser is rejected with a
// refund flagged, never silently double-booked.
type ConfirmBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*ConfirmBookingResult, error) {
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

	if !domainbooking.ValidReference(cmd.Reference) {
		return nil, domainbooking.ErrReferenceMismatch
	}

	b, err := unit.Bookings().ByReference(ctx, cmd.Reference)
	if err != nil {
		return nil, err
	}
	// Redelivered notifications for an already-confirmed booking are
	// acknowledged without touching the calendar again.
	if b.State == domainbooking.StateConfirmed && b.PaymentID == cmd.PaymentID {
		return &ConfirmBookingResult{BookingID: string(b.ID), Status: string(b.State)}, nil
	}
	if b.State != domainbooking.StatePending {
		return nil, domainbooking.ErrStaleState
	}

	now := h.now()
	reserved, err := h.reserve(ctx, unit, b, now)
	if err != nil {
		return nil, err
	}

	if reserved {
		if err := b.Confirm(cmd.Reference, cmd.PaymentID, now); err != nil {
			return nil, err
		}
	} else {
		if err := b.Reject("dates no longer available", cmd.PaymentID, now); err != nil {
			return nil, err
		}
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

	return &ConfirmBookingResult{BookingID: string(b.ID), Status: string(b.State)}, nil
}

// reserve claims the booking's range on the occupancy calendar with a
// compare-and-set save. A version conflict means another writer landed
// first; the calendar is re-read once and the claim retried against the
// fresh state. Returns false when the dates are genuinely taken.
func (h *ConfirmBookingHandler) reserve(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, now time.Time) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		calendar, err := unit.Occupancy().Calendar(ctx, b.PropertyID)
		if err != nil {
			return false, err
		}
		if err := calendar.Reserve(b.Range, string(b.ID), now); err != nil {
			if errors.Is(err, domainavailability.ErrOverlappingRange) {
				if recErr := h.recordCalendarEvents(ctx, calendar); recErr != nil {
					return false, recErr
				}
				return false, nil
			}
			return false, err
		}
		if err := unit.Occupancy().Save(ctx, calendar); err != nil {
			if errors.Is(err, domainavailability.ErrVersionConflict) {
				continue
			}
			return false, err
		}
		return true, h.recordCalendarEvents(ctx, calendar)
	}
	return false, domainbooking.ErrStaleState
}

func (h *ConfirmBookingHandler) recordCalendarEvents(ctx context.Context, calendar *domainavailability.OccupancyCalendar) error {
	pending := calendar.PendingEvents()
	calendar.ClearEvents()
	return outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending)
}

func (h *ConfirmBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *ConfirmBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ConfirmBookingCommand, *ConfirmBookingResult] = (*ConfirmBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*ConfirmBookingCommand)(nil)
