package pricing

import (
	"encoding/json"
	"errors"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

var (
	ErrNoNights          = errors.New("pricing: breakdown requires at least one nightly rate")
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
	ErrBreakdownTooLarge = errors.New("pricing: serialized breakdown exceeds byte budget")
)

// Discount tier thresholds in nights. Tiers are mutually exclusive and
// the longer-stay tier always wins.
const (
	WeeklyStayNights  = 7
	MonthlyStayNights = 30
)

// DefaultBreakdownByteBudget caps the serialized breakdown persisted
// alongside a booking. Breakdowns over budget are compacted, never
// silently truncated.
const DefaultBreakdownByteBudget = 5000

// GuestCount is the party composition of a booking request.
type GuestCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Babies   int `json:"babies"`
	Pets     int `json:"pets"`
}

func (g GuestCount) Total() int { return g.Adults + g.Children + g.Babies }

// Breakdown is the itemized, persisted derivation of a booking's total.
// Once frozen onto a confirmed booking it is never recomputed; rate
// changes only affect future quotes.
type Breakdown struct {
	Nights          []NightlyRate `json:"nights,omitempty"`
	NightCount      int           `json:"night_count"`
	SubTotal        money.Money   `json:"sub_total"`
	DiscountPercent float64       `json:"discount_percent"`
	Discount        money.Money   `json:"discount"`
	CleaningFee     money.Money   `json:"cleaning_fee"`
	PetFee          money.Money   `json:"pet_fee"`
	BookingFee      money.Money   `json:"booking_fee"`
	BookingFeePct   float64       `json:"booking_fee_percent"`
	VAT             money.Money   `json:"vat"`
	VATPercent      float64       `json:"vat_percent"`
	Total           money.Money   `json:"total"`
}

// ComputeBreakdown derives the itemized total in a fixed step order;
// the order affects rounding and is part of the contract. The function
// is pure: identical inputs produce identical breakdowns.
func ComputeBreakdown(rates []NightlyRate, plan *property.RatePlan, guests GuestCount, fees property.ServiceFees, vatPercent float64) (Breakdown, error) {
	if len(rates) == 0 {
		return Breakdown{}, ErrNoNights
	}
	currency := rates[0].Rate.Currency
	if currency == "" {
		return Breakdown{}, ErrCurrencyUnset
	}

	subTotal := money.Money{Currency: currency}
	for _, nr := range rates {
		sum, err := subTotal.Add(nr.Rate)
		if err != nil {
			return Breakdown{}, err
		}
		subTotal = sum
	}

	nights := len(rates)
	discountPct := 0.0
	if plan != nil {
		switch {
		case nights >= MonthlyStayNights:
			discountPct = plan.MonthlyDiscountPercent
		case nights >= WeeklyStayNights:
			discountPct = plan.WeeklyDiscountPercent
		}
	}
	discount := subTotal.Percent(discountPct)
	discounted, err := subTotal.Sub(discount)
	if err != nil {
		return Breakdown{}, err
	}

	cleaning := money.Money{Currency: currency}
	petFee := money.Money{Currency: currency}
	if plan != nil {
		cleaning.Amount = plan.CleaningFeeCents
		if guests.Pets > 0 {
			petFee.Amount = plan.PetFeeCents
		}
	}

	feeBase := discounted
	if feeBase, err = feeBase.Add(cleaning); err != nil {
		return Breakdown{}, err
	}
	if feeBase, err = feeBase.Add(petFee); err != nil {
		return Breakdown{}, err
	}
	bookingFee := feeBase.Percent(fees.GuestBookingFeePercent)

	vatBase, err := feeBase.Add(bookingFee)
	if err != nil {
		return Breakdown{}, err
	}
	vat := vatBase.Percent(vatPercent)

	total, err := vatBase.Add(vat)
	if err != nil {
		return Breakdown{}, err
	}

	nightsCopy := make([]NightlyRate, len(rates))
	copy(nightsCopy, rates)

	return Breakdown{
		Nights:          nightsCopy,
		NightCount:      nights,
		SubTotal:        subTotal,
		DiscountPercent: discountPct,
		Discount:        discount,
		CleaningFee:     cleaning,
		PetFee:          petFee,
		BookingFee:      bookingFee,
		BookingFeePct:   fees.GuestBookingFeePercent,
		VAT:             vat,
		VATPercent:      vatPercent,
		Total:           total,
	}, nil
}

// EncodedSize reports the serialized size persisted with the booking.
func (b Breakdown) EncodedSize() (int, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// CheckByteBudget returns ErrBreakdownTooLarge when the serialized form
// exceeds the budget. Callers shrink via Compact instead of failing the
// booking.
func (b Breakdown) CheckByteBudget(budget int) error {
	if budget <= 0 {
		budget = DefaultBreakdownByteBudget
	}
	size, err := b.EncodedSize()
	if err != nil {
		return err
	}
	if size > budget {
		return ErrBreakdownTooLarge
	}
	return nil
}

// Compact drops the per-night detail, keeping every derived total. The
// night count survives so discounts stay explainable.
func (b Breakdown) Compact() Breakdown {
	b.Nights = nil
	return b
}

// Copy returns a deep copy safe to freeze onto a booking.
func (b Breakdown) Copy() Breakdown {
	clone := b
	clone.Nights = append([]NightlyRate(nil), b.Nights...)
	return clone
}
