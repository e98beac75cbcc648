package availability

import (
	"context"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/dto"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/queries"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	domainrange "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

// Handle answers an availability question over the stored snapshots.
// The verdict is advisory: confirmation re-reserves atomically.
func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.AvailabilityVerdict, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.AvailabilityVerdict{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.AvailabilityVerdict{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	result, err := Snapshot(ctx, unit, q.PropertyID, q.CheckIn, q.CheckOut, h.now())
	if err != nil {
		return dto.AvailabilityVerdict{}, err
	}
	return dto.MapVerdict(q.PropertyID, result.Verdict), nil
}

func (h *CheckAvailabilityHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// SnapshotResult bundles everything the checker read so pricing can
// reuse the same snapshot without re-fetching.
type SnapshotResult struct {
	Verdict     domainavailability.Result
	Property    *domainproperty.Property
	Range       domainrange.DateRange
	Adjustments map[time.Time]domainproperty.PriceAdjustment
}

// Snapshot loads a property's rules, occupancy windows and adjustments
// and runs the pure checker over them.
func Snapshot(ctx context.Context, unit uow.UnitOfWork, propertyID string, checkIn, checkOut time.Time, now time.Time) (SnapshotResult, error) {
	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(propertyID))
	if err != nil {
		return SnapshotResult{}, err
	}

	dr, err := domainrange.New(checkIn, checkOut)
	if err != nil {
		// The checker reports the malformed range as a verdict, not an error.
		return SnapshotResult{
			Verdict:  domainavailability.Check(domainavailability.CheckInput{Now: now}),
			Property: prop,
		}, nil
	}

	calendar, err := unit.Occupancy().Calendar(ctx, prop.ID)
	if err != nil {
		return SnapshotResult{}, err
	}
	adjustments, err := unit.Adjustments().InRange(ctx, prop.ID, dr)
	if err != nil {
		return SnapshotResult{}, err
	}
	byDay := domainproperty.AdjustmentsByDay(adjustments)

	verdict := domainavailability.Check(domainavailability.CheckInput{
		Range:       dr,
		Now:         now,
		Rules:       &prop.Rules,
		Existing:    calendar.Windows(),
		Adjustments: byDay,
	})
	return SnapshotResult{
		Verdict:     verdict,
		Property:    prop,
		Range:       dr,
		Adjustments: byDay,
	}, nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.AvailabilityVerdict] = (*CheckAvailabilityHandler)(nil)
