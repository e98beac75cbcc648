package property

import (
	"context"
	"errors"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

var (
	ErrPropertyNotFound = errors.New("property: not found")
	ErrInvalidRules     = errors.New("property: invalid booking rules")
	ErrNoNightlyRate    = errors.New("property: property has neither a rate plan nor a flat nightly rate")
)

type PropertyID string

type HostID string

// Property is the bookable unit. Rate fields may change between bookings;
// a booking freezes the rates it resolved at confirmation time and never
// recomputes them retroactively.
type Property struct {
	ID          PropertyID
	Host        HostID
	Title       string
	Currency    string
	FlatNightly money.Money // fallback when no rate plan is configured
	Rates       *RatePlan
	Rules       BookingRules
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

// RatePlan carries the layered nightly rates plus the fee and discount
// schedule a host configured for a property.
type RatePlan struct {
	NightlyCents           int64
	WeekendNightlyCents    int64
	CleaningFeeCents       int64
	PetFeeCents            int64
	WeeklyDiscountPercent  float64 // applies at >= 7 nights
	MonthlyDiscountPercent float64 // applies at >= 30 nights
	Currency               string
}

// Nightly resolves the base rate for one calendar date: weekend rate on
// Saturday and Sunday, weekday rate otherwise.
func (rp RatePlan) Nightly(date time.Time) money.Money {
	wd := daterange.NormalizeToDay(date).Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		if rp.WeekendNightlyCents > 0 {
			return money.Money{Amount: rp.WeekendNightlyCents, Currency: rp.Currency}
		}
	}
	return money.Money{Amount: rp.NightlyCents, Currency: rp.Currency}
}

// PriceAdjustment is a per-calendar-day override. At most one adjustment
// exists per (property, date); Blocked wins over OverridePrice.
type PriceAdjustment struct {
	PropertyID    PropertyID
	Date          time.Time // normalized day
	OverrideCents int64
	HasOverride   bool
	Blocked       bool
}

// BookingRules constrain stay length and lead time for a property.
type BookingRules struct {
	MinStay            int // nights, >= 1
	MaxStay            int // nights, >= MinStay
	AdvanceNoticeDays  int // required lead time before check-in, >= 0
	CancellationPolicy string
}

func (r BookingRules) Validate() error {
	if r.MinStay < 1 || r.MaxStay < 1 || r.MinStay > r.MaxStay {
		return ErrInvalidRules
	}
	if r.AdvanceNoticeDays < 0 {
		return ErrInvalidRules
	}
	return nil
}

// ServiceFees is the platform fee schedule read at breakdown time; only
// derived totals are persisted per booking.
type ServiceFees struct {
	GuestBookingFeePercent float64
	HostServiceFeePercent  float64
}

// FallbackNightly returns the flat rate used when no rate plan exists.
func (p *Property) FallbackNightly() (money.Money, error) {
	if p.Rates != nil {
		return money.Money{}, nil
	}
	if p.FlatNightly.Amount <= 0 || p.FlatNightly.Currency == "" {
		return money.Money{}, ErrNoNightlyRate
	}
	return p.FlatNightly, nil
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
}

// AdjustmentRepository reads per-date overrides for a property. Range
// queries use the same half-open convention as bookings.
type AdjustmentRepository interface {
	InRange(ctx context.Context, id PropertyID, r daterange.DateRange) ([]PriceAdjustment, error)
	Upsert(ctx context.Context, adj PriceAdjustment) error
}

// AdjustmentsByDay indexes adjustments by their normalized day for the
// resolver and checker. Later duplicates for a day are ignored.
func AdjustmentsByDay(adjs []PriceAdjustment) map[time.Time]PriceAdjustment {
	index := make(map[time.Time]PriceAdjustment, len(adjs))
	for _, adj := range adjs {
		day := daterange.NormalizeToDay(adj.Date)
		if _, ok := index[day]; ok {
			continue
		}
		adj.Date = day
		index[day] = adj
	}
	return index
}
