package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	domainrange "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("agg_property")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

type propertyDocument struct {
	ID          string            `bson:"_id"`
	HostID      string            `bson:"host_id"`
	Title       string            `bson:"title"`
	Currency    string            `bson:"currency"`
	FlatNightly int64             `bson:"flat_nightly"`
	Rates       *ratePlanDocument `bson:"rates,omitempty"`
	Rules       rulesDocument     `bson:"rules"`
	CreatedAt   int64             `bson:"created_at"`
	UpdatedAt   int64             `bson:"updated_at"`
	Version     int64             `bson:"version"`
}

type ratePlanDocument struct {
	NightlyCents           int64   `bson:"nightly_cents"`
	WeekendNightlyCents    int64   `bson:"weekend_nightly_cents"`
	CleaningFeeCents       int64   `bson:"cleaning_fee_cents"`
	PetFeeCents            int64   `bson:"pet_fee_cents"`
	WeeklyDiscountPercent  float64 `bson:"weekly_discount_percent"`
	MonthlyDiscountPercent float64 `bson:"monthly_discount_percent"`
	Currency               string  `bson:"currency"`
}

type rulesDocument struct {
	MinStay            int    `bson:"min_stay"`
	MaxStay            int    `bson:"max_stay"`
	AdvanceNoticeDays  int    `bson:"advance_notice_days"`
	CancellationPolicy string `bson:"cancellation_policy"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	doc := propertyDocument{
		ID:          string(p.ID),
		HostID:      string(p.Host),
		Title:       p.Title,
		Currency:    p.Currency,
		FlatNightly: p.FlatNightly.Amount,
		Rules: rulesDocument{
			MinStay:            p.Rules.MinStay,
			MaxStay:            p.Rules.MaxStay,
			AdvanceNoticeDays:  p.Rules.AdvanceNoticeDays,
			CancellationPolicy: p.Rules.CancellationPolicy,
		},
		CreatedAt: p.CreatedAt.UnixMilli(),
		UpdatedAt: p.UpdatedAt.UnixMilli(),
		Version:   p.Version,
	}
	if p.Rates != nil {
		doc.Rates = &ratePlanDocument{
			NightlyCents:           p.Rates.NightlyCents,
			WeekendNightlyCents:    p.Rates.WeekendNightlyCents,
			CleaningFeeCents:       p.Rates.CleaningFeeCents,
			PetFeeCents:            p.Rates.PetFeeCents,
			WeeklyDiscountPercent:  p.Rates.WeeklyDiscountPercent,
			MonthlyDiscountPercent: p.Rates.MonthlyDiscountPercent,
			Currency:               p.Rates.Currency,
		}
	}
	return doc
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	p := &domainproperty.Property{
		ID:          domainproperty.PropertyID(d.ID),
		Host:        domainproperty.HostID(d.HostID),
		Title:       d.Title,
		Currency:    d.Currency,
		FlatNightly: money.Money{Amount: d.FlatNightly, Currency: d.Currency},
		Rules: domainproperty.BookingRules{
			MinStay:            d.Rules.MinStay,
			MaxStay:            d.Rules.MaxStay,
			AdvanceNoticeDays:  d.Rules.AdvanceNoticeDays,
			CancellationPolicy: d.Rules.CancellationPolicy,
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	if d.Rates != nil {
		p.Rates = &domainproperty.RatePlan{
			NightlyCents:           d.Rates.NightlyCents,
			WeekendNightlyCents:    d.Rates.WeekendNightlyCents,
			CleaningFeeCents:       d.Rates.CleaningFeeCents,
			PetFeeCents:            d.Rates.PetFeeCents,
			WeeklyDiscountPercent:  d.Rates.WeeklyDiscountPercent,
			MonthlyDiscountPercent: d.Rates.MonthlyDiscountPercent,
			Currency:               d.Rates.Currency,
		}
	}
	return p
}

// AdjustmentRepository stores one document per property and day.
type AdjustmentRepository struct {
	col *mongo.Collection
}

func NewAdjustmentRepository(db *mongo.Database) *AdjustmentRepository {
	col := db.Collection("agg_price_adjustment")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "property_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &AdjustmentRepository{col: col}
}

func (r *AdjustmentRepository) InRange(ctx context.Context, id domainproperty.PropertyID, dr domainrange.DateRange) ([]domainproperty.PriceAdjustment, error) {
	filter := bson.M{
		"property_id": string(id),
		"date":        bson.M{"$gte": dr.CheckIn.UnixMilli(), "$lt": dr.CheckOut.UnixMilli()},
	}
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainproperty.PriceAdjustment
	for cursor.Next(ctx) {
		var doc adjustmentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toValue())
	}
	return out, cursor.Err()
}

func (r *AdjustmentRepository) Upsert(ctx context.Context, adj domainproperty.PriceAdjustment) error {
	day := domainrange.NormalizeToDay(adj.Date)
	doc := adjustmentDocument{
		ID:          string(adj.PropertyID) + ":" + day.Format("2006-01-02"),
		PropertyID:  string(adj.PropertyID),
		Date:        day.UnixMilli(),
		Override:    adj.OverrideCents,
		HasOverride: adj.HasOverride,
		Blocked:     adj.Blocked,
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type adjustmentDocument struct {
	ID          string `bson:"_id"`
	PropertyID  string `bson:"property_id"`
	Date        int64  `bson:"date"`
	Override    int64  `bson:"override_cents"`
	HasOverride bool   `bson:"has_override"`
	Blocked     bool   `bson:"blocked"`
}

func (d adjustmentDocument) toValue() domainproperty.PriceAdjustment {
	return domainproperty.PriceAdjustment{
		PropertyID:    domainproperty.PropertyID(d.PropertyID),
		Date:          timestampToTime(d.Date),
		OverrideCents: d.Override,
		HasOverride:   d.HasOverride,
		Blocked:       d.Blocked,
	}
}
