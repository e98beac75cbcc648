package memory

import (
	"context"
	"errors"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertyRepo   domainproperty.Repository
	AdjustmentRepo domainproperty.AdjustmentRepository
	BookingRepo    domainbooking.Repository
	OccupancyRepo  domainavailability.OccupancyRepository
}

// NewFactory builds a factory over fresh empty stores.
func NewFactory() Factory {
	return Factory{
		PropertyRepo:   NewPropertyRepository(),
		AdjustmentRepo: NewAdjustmentRepository(),
		BookingRepo:    NewBookingRepository(),
		OccupancyRepo:  NewOccupancyRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is
// provided but the abstraction matches the application ports; the
// version-guarded saves carry the concurrency guarantees instead.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertyRepo == nil || f.AdjustmentRepo == nil || f.BookingRepo == nil || f.OccupancyRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties:  f.PropertyRepo,
		adjustments: f.AdjustmentRepo,
		bookings:    f.BookingRepo,
		occupancy:   f.OccupancyRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	properties  domainproperty.Repository
	adjustments domainproperty.AdjustmentRepository
	bookings    domainbooking.Repository
	occupancy   domainavailability.OccupancyRepository
}

func (u *Unit) Properties() domainproperty.Repository {
	return u.properties
}

func (u *Unit) Adjustments() domainproperty.AdjustmentRepository {
	return u.adjustments
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Occupancy() domainavailability.OccupancyRepository {
	return u.occupancy
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
