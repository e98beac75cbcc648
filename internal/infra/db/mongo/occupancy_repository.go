package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	domainrange "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
)

// OccupancyRepository persists one calendar document per property. Save
// is the compare-and-set that decides booking races: the filter pins the
// version the caller read, so of two racing confirmations only the first
// write matches and the second reloads.
type OccupancyRepository struct {
	col *mongo.Collection
}

func NewOccupancyRepository(db *mongo.Database) *OccupancyRepository {
	return &OccupancyRepository{col: db.Collection("agg_occupancy")}
}

func (r *OccupancyRepository) Calendar(ctx context.Context, id domainproperty.PropertyID) (*domainavailability.OccupancyCalendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OccupancyRepository) Save(ctx context.Context, calendar *domainavailability.OccupancyCalendar) error {
	doc := newCalendarDocument(calendar)
	filter := bson.M{"_id": doc.ID, "version": calendar.Version}
	doc.Version = calendar.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainavailability.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainavailability.ErrVersionConflict
	}
	calendar.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Blocks  []blockDocument `bson:"blocks"`
	Version int64           `bson:"version"`
}

type blockDocument struct {
	CheckIn   int64  `bson:"check_in"`
	CheckOut  int64  `bson:"check_out"`
	Reason    string `bson:"reason"`
	Reference string `bson:"reference"`
	CreatedAt int64  `bson:"created_at"`
}

func newCalendarDocument(c *domainavailability.OccupancyCalendar) calendarDocument {
	blocks := make([]blockDocument, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		blocks = append(blocks, blockDocument{
			CheckIn:   b.Range.CheckIn.UnixMilli(),
			CheckOut:  b.Range.CheckOut.UnixMilli(),
			Reason:    string(b.Reason),
			Reference: b.Reference,
			CreatedAt: b.CreatedAt.UnixMilli(),
		})
	}
	return calendarDocument{ID: string(c.PropertyID), Blocks: blocks, Version: c.Version}
}

func (d calendarDocument) toAggregate() *domainavailability.OccupancyCalendar {
	cal := &domainavailability.OccupancyCalendar{
		PropertyID: domainproperty.PropertyID(d.ID),
		Version:    d.Version,
	}
	for _, b := range d.Blocks {
		cal.Blocks = append(cal.Blocks, domainavailability.Block{
			Range:     domainrange.DateRange{CheckIn: timestampToTime(b.CheckIn), CheckOut: timestampToTime(b.CheckOut)},
			Reason:    domainavailability.BlockReason(b.Reason),
			Reference: b.Reference,
			CreatedAt: timestampToTime(b.CreatedAt),
		})
	}
	return cal
}
