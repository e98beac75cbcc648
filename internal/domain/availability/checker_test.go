package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, from, to time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(from, to)
	require.NoError(t, err)
	return dr
}

func TestCheckRejectsInvalidRange(t *testing.T) {
	res := Check(CheckInput{
		Range: daterange.DateRange{CheckIn: day(2025, time.April, 5), CheckOut: day(2025, time.April, 1)},
		Now:   day(2025, time.March, 1),
	})
	assert.False(t, res.OK)
	assert.Equal(t, ReasonInvalidRange, res.Reason)
}

func TestCheckAdvanceNotice(t *testing.T) {
	rules := &property.BookingRules{MinStay: 1, MaxStay: 90, AdvanceNoticeDays: 3}

	res := Check(CheckInput{
		Range: mustRange(t, day(2025, time.April, 2), day(2025, time.April, 5)),
		Now:   day(2025, time.April, 1),
		Rules: rules,
	})
	assert.Equal(t, ReasonInsufficientNotice, res.Reason)

	res = Check(CheckInput{
		Range: mustRange(t, day(2025, time.April, 4), day(2025, time.April, 7)),
		Now:   day(2025, time.April, 1),
		Rules: rules,
	})
	assert.True(t, res.OK)
}

func TestCheckStayLengthBounds(t *testing.T) {
	rules := &property.BookingRules{MinStay: 3, MaxStay: 14}

	res := Check(CheckInput{
		Range: mustRange(t, day(2025, time.April, 1), day(2025, time.April, 3)), // 2 nights
		Now:   day(2025, time.March, 1),
		Rules: rules,
	})
	assert.Equal(t, ReasonBelowMinStay, res.Reason)

	res = Check(CheckInput{
		Range: mustRange(t, day(2025, time.April, 1), day(2025, time.April, 20)), // 19 nights
		Now:   day(2025, time.March, 1),
		Rules: rules,
	})
	assert.Equal(t, ReasonAboveMaxStay, res.Reason)
}

func TestCheckConflictUsesHalfOpenOverlap(t *testing.T) {
	existing := []Window{{
		BookingID: "b1",
		Range:     mustRange(t, day(2025, time.April, 1), day(2025, time.April, 5)),
	}}

	// Checkout on another booking's check-in day is a valid turnover.
	res := Check(CheckInput{
		Range:    mustRange(t, day(2025, time.March, 28), day(2025, time.April, 1)),
		Now:      day(2025, time.March, 1),
		Existing: existing,
	})
	assert.True(t, res.OK)

	res = Check(CheckInput{
		Range:    mustRange(t, day(2025, time.April, 4), day(2025, time.April, 8)),
		Now:      day(2025, time.March, 1),
		Existing: existing,
	})
	assert.Equal(t, ReasonDateConflict, res.Reason)
}

func TestCheckBlockedDate(t *testing.T) {
	blocked := property.AdjustmentsByDay([]property.PriceAdjustment{
		{PropertyID: "p1", Date: day(2025, time.April, 2), Blocked: true},
	})

	res := Check(CheckInput{
		Range:       mustRange(t, day(2025, time.April, 1), day(2025, time.April, 4)),
		Now:         day(2025, time.March, 1),
		Adjustments: blocked,
	})
	assert.Equal(t, ReasonDateBlocked, res.Reason)

	// The blocked day as checkout day is fine: checkout is not a night.
	res = Check(CheckInput{
		Range:       mustRange(t, day(2025, time.March, 30), day(2025, time.April, 2)),
		Now:         day(2025, time.March, 1),
		Adjustments: blocked,
	})
	assert.True(t, res.OK)
}

func TestCheckOrderConflictBeforeBlocked(t *testing.T) {
	// A range that both conflicts and spans a blocked date reports the
	// conflict; the evaluation order is part of the contract.
	existing := []Window{{
		BookingID: "b1",
		Range:     mustRange(t, day(2025, time.April, 1), day(2025, time.April, 3)),
	}}
	blocked := property.AdjustmentsByDay([]property.PriceAdjustment{
		{PropertyID: "p1", Date: day(2025, time.April, 4), Blocked: true},
	})

	res := Check(CheckInput{
		Range:       mustRange(t, day(2025, time.April, 2), day(2025, time.April, 6)),
		Now:         day(2025, time.March, 1),
		Existing:    existing,
		Adjustments: blocked,
	})
	assert.Equal(t, ReasonDateConflict, res.Reason)
}

func TestCalendarReserveAndRelease(t *testing.T) {
	cal := NewCalendar("p1")
	now := day(2025, time.March, 1)

	r1 := mustRange(t, day(2025, time.April, 1), day(2025, time.April, 5))
	require.NoError(t, cal.Reserve(r1, "b1", now))

	// Overlapping reservation is refused and leaves an event trail.
	r2 := mustRange(t, day(2025, time.April, 3), day(2025, time.April, 7))
	err := cal.Reserve(r2, "b2", now)
	assert.ErrorIs(t, err, ErrOverlappingRange)

	// Back-to-back is allowed.
	r3 := mustRange(t, day(2025, time.April, 5), day(2025, time.April, 8))
	require.NoError(t, cal.Reserve(r3, "b3", now))

	require.NoError(t, cal.Release("b1", now))
	require.NoError(t, cal.Reserve(r2, "b2", now))

	assert.ErrorIs(t, cal.Release("missing", now), ErrRangeNotFound)
}

func TestCalendarWindows(t *testing.T) {
	cal := NewCalendar("p1")
	now := day(2025, time.March, 1)
	require.NoError(t, cal.Reserve(mustRange(t, day(2025, time.April, 1), day(2025, time.April, 5)), "b1", now))
	require.NoError(t, cal.BlockRange(mustRange(t, day(2025, time.May, 1), day(2025, time.May, 5)), "maintenance", now))

	windows := cal.Windows()
	require.Len(t, windows, 1)
	assert.Equal(t, "b1", windows[0].BookingID)
}
