package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/availability"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	domainrange "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, from, to time.Time) domainrange.DateRange {
	t.Helper()
	dr, err := domainrange.New(from, to)
	require.NoError(t, err)
	return dr
}

func TestOccupancySaveVersionConflict(t *testing.T) {
	repo := NewOccupancyRepository()
	ctx := context.Background()
	id := domainproperty.PropertyID("prop-1")

	first, err := repo.Calendar(ctx, id)
	require.NoError(t, err)
	second, err := repo.Calendar(ctx, id)
	require.NoError(t, err)

	now := day(2025, time.March, 1)
	require.NoError(t, first.Reserve(mustRange(t, day(2025, time.April, 1), day(2025, time.April, 5)), "bkg-1", now))
	require.NoError(t, repo.Save(ctx, first))

	// The second snapshot was read before the first write landed.
	require.NoError(t, second.Reserve(mustRange(t, day(2025, time.April, 3), day(2025, time.April, 7)), "bkg-2", now))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, domainavailability.ErrVersionConflict)

	// A fresh read carries the winning block and the bumped version.
	reloaded, err := repo.Calendar(ctx, id)
	require.NoError(t, err)
	assert.Len(t, reloaded.Blocks, 1)
	assert.Equal(t, "bkg-1", reloaded.Blocks[0].Reference)
	assert.Equal(t, int64(1), reloaded.Version)
}

func TestOccupancyCalendarReadsAreIsolated(t *testing.T) {
	repo := NewOccupancyRepository()
	ctx := context.Background()
	id := domainproperty.PropertyID("prop-1")

	cal, err := repo.Calendar(ctx, id)
	require.NoError(t, err)
	require.NoError(t, cal.Reserve(mustRange(t, day(2025, time.April, 1), day(2025, time.April, 3)), "bkg-1", day(2025, time.March, 1)))

	// Unsaved mutation must not leak into the store.
	fresh, err := repo.Calendar(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, fresh.Blocks)
}

func TestPropertyRepositoryCopies(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()

	prop := &domainproperty.Property{
		ID:       "prop-1",
		Currency: "EUR",
		Rates:    &domainproperty.RatePlan{NightlyCents: 10000, Currency: "EUR"},
		Rules:    domainproperty.BookingRules{MinStay: 1, MaxStay: 30},
	}
	require.NoError(t, repo.Save(ctx, prop))

	got, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	got.Rates.NightlyCents = 99999

	again, err := repo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), again.Rates.NightlyCents)
}

func TestAdjustmentRepositoryRangeQuery(t *testing.T) {
	repo := NewAdjustmentRepository()
	ctx := context.Background()
	id := domainproperty.PropertyID("prop-1")

	for _, d := range []time.Time{
		day(2025, time.April, 1),
		day(2025, time.April, 3),
		day(2025, time.April, 5),
	} {
		require.NoError(t, repo.Upsert(ctx, domainproperty.PriceAdjustment{
			PropertyID: id, Date: d, OverrideCents: 20000, HasOverride: true,
		}))
	}

	// Half-open: April 5 is the checkout day and stays outside.
	got, err := repo.InRange(ctx, id, mustRange(t, day(2025, time.April, 1), day(2025, time.April, 5)))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2025, time.April, 1), got[0].Date)
	assert.Equal(t, day(2025, time.April, 3), got[1].Date)
}
