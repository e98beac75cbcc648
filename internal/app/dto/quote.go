package dto

import (
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/pricing"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type NightlyRateDTO struct {
	Date string   `json:"date"`
	Rate MoneyDTO `json:"rate"`
}

type BreakdownDTO struct {
	Nights          []NightlyRateDTO `json:"nights,omitempty"`
	NightCount      int              `json:"night_count"`
	SubTotal        MoneyDTO         `json:"sub_total"`
	DiscountPercent float64          `json:"discount_percent"`
	Discount        MoneyDTO         `json:"discount"`
	CleaningFee     MoneyDTO         `json:"cleaning_fee"`
	PetFee          MoneyDTO         `json:"pet_fee"`
	BookingFee      MoneyDTO         `json:"booking_fee"`
	VAT             MoneyDTO         `json:"vat"`
	Total           MoneyDTO         `json:"total"`
}

func MapBreakdown(b pricing.Breakdown) BreakdownDTO {
	nights := make([]NightlyRateDTO, 0, len(b.Nights))
	for _, nr := range b.Nights {
		nights = append(nights, NightlyRateDTO{
			Date: nr.Date.Format(time.DateOnly),
			Rate: MapMoney(nr.Rate),
		})
	}
	return BreakdownDTO{
		Nights:          nights,
		NightCount:      b.NightCount,
		SubTotal:        MapMoney(b.SubTotal),
		DiscountPercent: b.DiscountPercent,
		Discount:        MapMoney(b.Discount),
		CleaningFee:     MapMoney(b.CleaningFee),
		PetFee:          MapMoney(b.PetFee),
		BookingFee:      MapMoney(b.BookingFee),
		VAT:             MapMoney(b.VAT),
		Total:           MapMoney(b.Total),
	}
}

// Quote is the priced answer to an availability question; the embedded
// payment quote is what the caller forwards to the payment processor.
type Quote struct {
	PropertyID string       `json:"property_id"`
	CheckIn    time.Time    `json:"check_in"`
	CheckOut   time.Time    `json:"check_out"`
	Breakdown  BreakdownDTO `json:"breakdown"`
	Total      MoneyDTO     `json:"total"`
}

// AvailabilityVerdict carries the typed checker outcome to the caller;
// rejection reasons are user-facing and pass through verbatim.
type AvailabilityVerdict struct {
	PropertyID string `json:"property_id"`
	Available  bool   `json:"available"`
	Reason     string `json:"reason,omitempty"`
}

func MapVerdict(propertyID string, res availability.Result) AvailabilityVerdict {
	return AvailabilityVerdict{
		PropertyID: propertyID,
		Available:  res.OK,
		Reason:     string(res.Reason),
	}
}
