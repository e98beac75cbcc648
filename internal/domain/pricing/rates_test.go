package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testPlan() *property.RatePlan {
	return &property.RatePlan{
		NightlyCents:        10000,
		WeekendNightlyCents: 12000,
		CleaningFeeCents:    5000,
		PetFeeCents:         2500,
		Currency:            "EUR",
	}
}

func nightsOf(t *testing.T, from, to time.Time) []time.Time {
	t.Helper()
	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	return dr.EnumerateNights()
}

func TestResolveWeekdayAndWeekendRates(t *testing.T) {
	// 2025-04-04 is a Friday; the 5th and 6th are the weekend.
	nights := nightsOf(t, day(2025, time.April, 4), day(2025, time.April, 8))

	rates, err := ResolveNightlyRates(nights, testPlan(), nil, money.Money{})
	require.NoError(t, err)
	require.Len(t, rates, 4)
	assert.Equal(t, int64(10000), rates[0].Rate.Amount) // Fri
	assert.Equal(t, int64(12000), rates[1].Rate.Amount) // Sat
	assert.Equal(t, int64(12000), rates[2].Rate.Amount) // Sun
	assert.Equal(t, int64(10000), rates[3].Rate.Amount) // Mon
}

func TestResolveOverrideBeatsWeekendRate(t *testing.T) {
	// 2025-04-05 is a Saturday with an unblocked override.
	adjustments := property.AdjustmentsByDay([]property.PriceAdjustment{
		{PropertyID: "p1", Date: day(2025, time.April, 5), OverrideCents: 20000, HasOverride: true},
	})
	nights := nightsOf(t, day(2025, time.April, 4), day(2025, time.April, 7))

	rates, err := ResolveNightlyRates(nights, testPlan(), adjustments, money.Money{})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), rates[0].Rate.Amount)
	assert.Equal(t, int64(20000), rates[1].Rate.Amount) // override wins
	assert.Equal(t, int64(12000), rates[2].Rate.Amount)
}

func TestResolveBlockedAdjustmentDoesNotPrice(t *testing.T) {
	// A blocked adjustment never contributes its override price; the
	// availability checker excludes the date before pricing runs, so the
	// resolver falls through to the base rate.
	adjustments := property.AdjustmentsByDay([]property.PriceAdjustment{
		{PropertyID: "p1", Date: day(2025, time.April, 1), OverrideCents: 99900, HasOverride: true, Blocked: true},
	})
	nights := nightsOf(t, day(2025, time.April, 1), day(2025, time.April, 2))

	rates, err := ResolveNightlyRates(nights, testPlan(), adjustments, money.Money{})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), rates[0].Rate.Amount)
}

func TestResolveFlatFallbackWithoutPlan(t *testing.T) {
	nights := nightsOf(t, day(2025, time.April, 4), day(2025, time.April, 7))

	rates, err := ResolveNightlyRates(nights, nil, nil, money.Must(8000, "EUR"))
	require.NoError(t, err)
	for _, nr := range rates {
		assert.Equal(t, int64(8000), nr.Rate.Amount)
	}
}

func TestResolveMissingRatePlan(t *testing.T) {
	nights := nightsOf(t, day(2025, time.April, 4), day(2025, time.April, 7))

	_, err := ResolveNightlyRates(nights, nil, nil, money.Money{})
	assert.ErrorIs(t, err, ErrMissingRatePlan)
}

func TestResolvePreservesOrderAndLength(t *testing.T) {
	nights := nightsOf(t, day(2025, time.April, 1), day(2025, time.April, 15))

	rates, err := ResolveNightlyRates(nights, testPlan(), nil, money.Money{})
	require.NoError(t, err)
	require.Len(t, rates, len(nights))
	for i, nr := range rates {
		assert.Equal(t, nights[i], nr.Date)
	}
}
