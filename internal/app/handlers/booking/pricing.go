package booking

import (
	"fmt"

	availabilityhandlers "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/availability"
	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/pricing"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
)

// PricingSettings carries the platform-level knobs applied on top of a
// host's rate plan. They are read from configuration at startup and
// frozen into each breakdown at quote time.
type PricingSettings struct {
	Fees                domainproperty.ServiceFees
	VATPercent          float64
	BreakdownByteBudget int
}

func (s PricingSettings) byteBudget() int {
	if s.BreakdownByteBudget > 0 {
		return s.BreakdownByteBudget
	}
	return pricing.DefaultBreakdownByteBudget
}

// UnavailableError reports a stay that failed the availability check,
// carrying the first failed rule for the caller.
type UnavailableError struct {
	Reason domainavailability.Reason
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("booking: stay unavailable: %s", e.Reason)
}

// priceStay turns an availability snapshot into a persisted breakdown.
// The snapshot must already have passed the checker. Oversized
// breakdowns drop their per-night lines rather than fail the booking.
func priceStay(snap availabilityhandlers.SnapshotResult, guests pricing.GuestCount, settings PricingSettings) (pricing.Breakdown, error) {
	fallback, err := snap.Property.FallbackNightly()
	if err != nil {
		return pricing.Breakdown{}, err
	}
	rates, err := pricing.ResolveNightlyRates(snap.Range.EnumerateNights(), snap.Property.Rates, snap.Adjustments, fallback)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	breakdown, err := pricing.ComputeBreakdown(rates, snap.Property.Rates, guests, settings.Fees, settings.VATPercent)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	if err := breakdown.CheckByteBudget(settings.byteBudget()); err != nil {
		breakdown = breakdown.Compact()
		if err := breakdown.CheckByteBudget(settings.byteBudget()); err != nil {
			return pricing.Breakdown{}, err
		}
	}
	return breakdown, nil
}
