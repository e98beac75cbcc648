package pricing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

var testFees = property.ServiceFees{GuestBookingFeePercent: 12, HostServiceFeePercent: 3}

const testVAT = 21.0 // Spanish standard rate

func resolvedRates(t *testing.T, plan *property.RatePlan, from, to time.Time) []NightlyRate {
	t.Helper()
	rates, err := ResolveNightlyRates(nightsOf(t, from, to), plan, nil, money.Money{})
	require.NoError(t, err)
	return rates
}

func TestBreakdownThreeWeekdayNights(t *testing.T) {
	// Mon 2025-04-07 to Thu 2025-04-10: 3 weekday nights, no discount.
	plan := testPlan()
	rates := resolvedRates(t, plan, day(2025, time.April, 7), day(2025, time.April, 10))

	b, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 2}, testFees, testVAT)
	require.NoError(t, err)

	assert.Equal(t, 3, b.NightCount)
	assert.Equal(t, int64(30000), b.SubTotal.Amount)
	assert.Equal(t, 0.0, b.DiscountPercent)
	assert.Equal(t, int64(0), b.Discount.Amount)
	assert.Equal(t, int64(5000), b.CleaningFee.Amount)
	assert.Equal(t, int64(0), b.PetFee.Amount)
	// bookingFee = (30000 + 5000) * 12% = 4200
	assert.Equal(t, int64(4200), b.BookingFee.Amount)
	// vat = (35000 + 4200) * 21% = 8232
	assert.Equal(t, int64(8232), b.VAT.Amount)
	assert.Equal(t, int64(30000+5000+4200+8232), b.Total.Amount)
	assert.Equal(t, "EUR", b.Total.Currency)
}

func TestBreakdownWeeklyDiscountAppliedBeforeFees(t *testing.T) {
	plan := testPlan()
	plan.WeeklyDiscountPercent = 10
	// Tue 2025-04-01 to Wed 2025-04-09: 8 nights crossing one weekend.
	rates := resolvedRates(t, plan, day(2025, time.April, 1), day(2025, time.April, 9))

	b, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 2}, testFees, testVAT)
	require.NoError(t, err)

	// 6 weekday + 2 weekend nights.
	assert.Equal(t, int64(6*10000+2*12000), b.SubTotal.Amount)
	assert.Equal(t, 10.0, b.DiscountPercent)
	assert.Equal(t, int64(8400), b.Discount.Amount)

	discounted := b.SubTotal.Amount - b.Discount.Amount
	wantFee := money.Must(discounted+5000, "EUR").Percent(12).Amount
	assert.Equal(t, wantFee, b.BookingFee.Amount)
}

func TestBreakdownMonthlyTierWinsEvenWhenSmaller(t *testing.T) {
	plan := testPlan()
	plan.WeeklyDiscountPercent = 25
	plan.MonthlyDiscountPercent = 15
	rates := resolvedRates(t, plan, day(2025, time.April, 1), day(2025, time.May, 1)) // 30 nights

	b, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 1}, testFees, testVAT)
	require.NoError(t, err)
	assert.Equal(t, 15.0, b.DiscountPercent)
}

func TestBreakdownTierBoundaries(t *testing.T) {
	plan := testPlan()
	plan.WeeklyDiscountPercent = 10
	plan.MonthlyDiscountPercent = 20

	cases := []struct {
		nights int
		want   float64
	}{
		{6, 0},
		{7, 10},
		{29, 10},
		{30, 20},
	}
	for _, tc := range cases {
		rates := resolvedRates(t, plan, day(2025, time.April, 1), day(2025, time.April, 1).AddDate(0, 0, tc.nights))
		b, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 1}, testFees, testVAT)
		require.NoError(t, err)
		assert.Equal(t, tc.want, b.DiscountPercent, "%d nights", tc.nights)
	}
}

func TestBreakdownPetFeeOnlyWithPets(t *testing.T) {
	plan := testPlan()
	rates := resolvedRates(t, plan, day(2025, time.April, 7), day(2025, time.April, 10))

	without, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 2}, testFees, testVAT)
	require.NoError(t, err)
	assert.Equal(t, int64(0), without.PetFee.Amount)

	with, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 2, Pets: 1}, testFees, testVAT)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), with.PetFee.Amount)
	assert.Greater(t, with.Total.Amount, without.Total.Amount)
}

func TestBreakdownDeterminism(t *testing.T) {
	plan := testPlan()
	plan.WeeklyDiscountPercent = 10
	rates := resolvedRates(t, plan, day(2025, time.April, 1), day(2025, time.April, 12))
	guests := GuestCount{Adults: 2, Children: 1, Pets: 1}

	first, err := ComputeBreakdown(rates, plan, guests, testFees, testVAT)
	require.NoError(t, err)
	second, err := ComputeBreakdown(rates, plan, guests, testFees, testVAT)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestBreakdownRejectsEmptyRates(t *testing.T) {
	_, err := ComputeBreakdown(nil, testPlan(), GuestCount{Adults: 1}, testFees, testVAT)
	assert.ErrorIs(t, err, ErrNoNights)
}

func TestBreakdownByteBudgetAndCompact(t *testing.T) {
	plan := testPlan()
	// A long stay produces a large per-night table.
	rates := resolvedRates(t, plan, day(2025, time.January, 1), day(2025, time.December, 1))

	b, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 2}, testFees, testVAT)
	require.NoError(t, err)

	err = b.CheckByteBudget(DefaultBreakdownByteBudget)
	assert.ErrorIs(t, err, ErrBreakdownTooLarge)

	compact := b.Compact()
	assert.NoError(t, compact.CheckByteBudget(DefaultBreakdownByteBudget))
	// Compacting loses the per-night table but never the totals.
	assert.Equal(t, b.Total, compact.Total)
	assert.Equal(t, b.NightCount, compact.NightCount)
}

func TestBreakdownCopyIsDeep(t *testing.T) {
	plan := testPlan()
	rates := resolvedRates(t, plan, day(2025, time.April, 7), day(2025, time.April, 10))
	b, err := ComputeBreakdown(rates, plan, GuestCount{Adults: 1}, testFees, testVAT)
	require.NoError(t, err)

	clone := b.Copy()
	clone.Nights[0].Rate.Amount = 1
	assert.Equal(t, int64(10000), b.Nights[0].Rate.Amount)
}
