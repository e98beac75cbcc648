package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	domainrange "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedFactory(t *testing.T) memory.Factory {
	t.Helper()
	factory := memory.NewFactory()
	prop := &domainproperty.Property{
		ID:       "prop-1",
		Currency: "EUR",
		Rates:    &domainproperty.RatePlan{NightlyCents: 10000, Currency: "EUR"},
		Rules:    domainproperty.BookingRules{MinStay: 2, MaxStay: 30, AdvanceNoticeDays: 1},
	}
	require.NoError(t, factory.PropertyRepo.Save(context.Background(), prop))
	return factory
}

func handlerFor(factory memory.Factory, now time.Time) *CheckAvailabilityHandler {
	return &CheckAvailabilityHandler{
		UoWFactory: factory,
		Now:        func() time.Time { return now },
	}
}

func TestCheckAvailableStay(t *testing.T) {
	factory := seedFactory(t)
	h := handlerFor(factory, day(2025, time.March, 1))

	verdict, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		PropertyID: "prop-1",
		CheckIn:    day(2025, time.April, 1),
		CheckOut:   day(2025, time.April, 4),
	})
	require.NoError(t, err)
	assert.True(t, verdict.Available)
	assert.Empty(t, verdict.Reason)
}

func TestCheckReportsConflictWithHeldRange(t *testing.T) {
	factory := seedFactory(t)
	ctx := context.Background()

	cal, err := factory.OccupancyRepo.Calendar(ctx, "prop-1")
	require.NoError(t, err)
	held, err := domainrange.New(day(2025, time.April, 2), day(2025, time.April, 6))
	require.NoError(t, err)
	require.NoError(t, cal.Reserve(held, "bkg-1", day(2025, time.March, 1)))
	require.NoError(t, factory.OccupancyRepo.Save(ctx, cal))

	h := handlerFor(factory, day(2025, time.March, 1))
	verdict, err := h.Handle(ctx, CheckAvailabilityQuery{
		PropertyID: "prop-1",
		CheckIn:    day(2025, time.April, 4),
		CheckOut:   day(2025, time.April, 8),
	})
	require.NoError(t, err)
	assert.False(t, verdict.Available)
	assert.Equal(t, string(domainavailability.ReasonDateConflict), verdict.Reason)

	// Back-to-back with the held range is allowed.
	verdict, err = h.Handle(ctx, CheckAvailabilityQuery{
		PropertyID: "prop-1",
		CheckIn:    day(2025, time.April, 6),
		CheckOut:   day(2025, time.April, 9),
	})
	require.NoError(t, err)
	assert.True(t, verdict.Available)
}

func TestCheckRuleFailures(t *testing.T) {
	factory := seedFactory(t)
	h := handlerFor(factory, day(2025, time.March, 31))

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		reason   domainavailability.Reason
	}{
		{"inverted range", day(2025, time.April, 5), day(2025, time.April, 1), domainavailability.ReasonInvalidRange},
		{"insufficient notice", day(2025, time.March, 31), day(2025, time.April, 4), domainavailability.ReasonInsufficientNotice},
		{"below min stay", day(2025, time.April, 10), day(2025, time.April, 11), domainavailability.ReasonBelowMinStay},
		{"above max stay", day(2025, time.April, 1), day(2025, time.June, 1), domainavailability.ReasonAboveMaxStay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := h.Handle(context.Background(), CheckAvailabilityQuery{
				PropertyID: "prop-1",
				CheckIn:    tc.checkIn,
				CheckOut:   tc.checkOut,
			})
			require.NoError(t, err)
			assert.False(t, verdict.Available)
			assert.Equal(t, string(tc.reason), verdict.Reason)
		})
	}
}

func TestCheckUnknownProperty(t *testing.T) {
	factory := seedFactory(t)
	h := handlerFor(factory, day(2025, time.March, 1))

	_, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		PropertyID: "missing",
		CheckIn:    day(2025, time.April, 1),
		CheckOut:   day(2025, time.April, 4),
	})
	assert.ErrorIs(t, err, domainproperty.ErrPropertyNotFound)
}
