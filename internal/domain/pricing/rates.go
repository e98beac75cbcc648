package pricing

import (
	"errors"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

var (
	ErrMissingRatePlan = errors.New("pricing: no rate plan configured and no fallback nightly rate supplied")
)

// NightlyRate is the resolved price of one stay night.
type NightlyRate struct {
	Date time.Time   `json:"date"`
	Rate money.Money `json:"rate"`
}

// ResolveNightlyRates resolves a rate for every night, in input order.
// Priority per date: unblocked override price, then weekend/weekday base
// rate from the plan, then the caller-supplied flat fallback when the
// property has no plan at all. Output length always equals the input
// length.
func ResolveNightlyRates(nights []time.Time, plan *property.RatePlan, adjustments map[time.Time]property.PriceAdjustment, fallback money.Money) ([]NightlyRate, error) {
	currency := fallback.Currency
	if plan != nil {
		currency = plan.Currency
	}
	if plan == nil && (fallback.Amount <= 0 || fallback.Currency == "") {
		return nil, ErrMissingRatePlan
	}

	rates := make([]NightlyRate, 0, len(nights))
	for _, night := range nights {
		day := daterange.NormalizeToDay(night)
		if adj, found := adjustments[day]; found && !adj.Blocked && adj.HasOverride {
			rates = append(rates, NightlyRate{Date: day, Rate: money.Money{Amount: adj.OverrideCents, Currency: currency}})
			continue
		}
		if plan != nil {
			rates = append(rates, NightlyRate{Date: day, Rate: plan.Nightly(day)})
			continue
		}
		rates = append(rates, NightlyRate{Date: day, Rate: fallback})
	}
	return rates, nil
}
