package booking

import (
	"context"
	"errors"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/dto"
	availabilityhandlers "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/availability"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/middleware"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/outbox"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/policies"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/pricing"
)

const requestBookingKey = "booking.request"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type RequestBookingCommand struct {
	CommandID       string
	PropertyID      string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          pricing.GuestCount
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID       string           `json:"booking_id"`
	Reference       string           `json:"reference"`
	PaymentIntentID string           `json:"payment_intent_id"`
	Breakdown       dto.BreakdownDTO `json:"breakdown"`
	Total           dto.MoneyDTO     `json:"total"`
}

// RequestBookingHandler creates a pending booking and starts the
// payment capture. The dates are NOT reserved yet; the occupancy claim
// happens at confirmation when the payment notification arrives.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Settings   PricingSettings
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
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

	now := h.now()
	snap, err := availabilityhandlers.Snapshot(ctx, unit, cmd.PropertyID, cmd.CheckIn, cmd.CheckOut, now)
	if err != nil {
		return nil, err
	}
	if !snap.Verdict.OK {
		return nil, UnavailableError{Reason: snap.Verdict.Reason}
	}

	breakdown, err := priceStay(snap, cmd.Guests, h.Settings)
	if err != nil {
		return nil, err
	}

	reference, err := domainbooking.NewReference()
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		PropertyID: snap.Property.ID,
		GuestID:    cmd.GuestID,
		Range:      snap.Range,
		Guests:     cmd.Guests,
		Price:      breakdown,
		Reference:  reference,
		Policy: domainbooking.CancellationPolicySnapshot{
			PolicyID: snap.Property.Rules.CancellationPolicy,
		},
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	intentID, err := h.Payments.InitiatePayment(ctx, policies.PaymentQuote{
		PropertyID: cmd.PropertyID,
		Total:      breakdown.Total,
		Reference:  reference,
	})
	if err != nil {
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

	return &RequestBookingResult{
		BookingID:       string(b.ID),
		Reference:       reference,
		PaymentIntentID: intentID,
		Breakdown:       dto.MapBreakdown(breakdown),
		Total:           dto.MapMoney(breakdown.Total),
	}, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
