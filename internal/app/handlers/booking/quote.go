package booking

import (
	"context"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/dto"
	availabilityhandlers "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/availability"
	handlersupport "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/support"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/queries"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/pricing"
)

const getQuoteKey = "booking.quote"

type GetQuoteQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     pricing.GuestCount
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

type GetQuoteHandler struct {
	UoWFactory uow.UoWFactory
	Settings   PricingSettings
	Now        func() time.Time
}

// Handle prices a prospective stay. Quotes are not reservations: the
// same dates may be gone by the time the guest commits.
func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	snap, err := availabilityhandlers.Snapshot(execCtx, unit, q.PropertyID, q.CheckIn, q.CheckOut, h.now())
	if err != nil {
		return dto.Quote{}, err
	}
	if !snap.Verdict.OK {
		return dto.Quote{}, UnavailableError{Reason: snap.Verdict.Reason}
	}

	breakdown, err := priceStay(snap, q.Guests, h.Settings)
	if err != nil {
		return dto.Quote{}, err
	}

	return dto.Quote{
		PropertyID: q.PropertyID,
		CheckIn:    snap.Range.CheckIn,
		CheckOut:   snap.Range.CheckOut,
		Breakdown:  dto.MapBreakdown(breakdown),
		Total:      dto.MapMoney(breakdown.Total),
	}, nil
}

func (h *GetQuoteHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ queries.Handler[GetQuoteQuery, dto.Quote] = (*GetQuoteHandler)(nil)
