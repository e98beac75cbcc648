package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/uow"
	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertyRepo   domainproperty.Repository
	AdjustmentRepo domainproperty.AdjustmentRepository
	BookingRepo    domainbooking.Repository
	OccupancyRepo  domainavailability.OccupancyRepository
}

// NewFactory builds a factory with the default repositories over db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:             db,
		PropertyRepo:   NewPropertyRepository(db),
		AdjustmentRepo: NewAdjustmentRepository(db),
		BookingRepo:    NewBookingRepository(db),
		OccupancyRepo:  NewOccupancyRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:          f.DB,
		session:     session,
		properties:  f.PropertyRepo,
		adjustments: f.AdjustmentRepo,
		bookings:    f.BookingRepo,
		occupancy:   f.OccupancyRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
