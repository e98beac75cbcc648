package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeToDay(t *testing.T) {
	in := time.Date(2025, time.April, 1, 23, 59, 59, 123, time.FixedZone("CEST", 2*3600))
	got := NormalizeToDay(in)
	// 23:59 CEST is 21:59 UTC, still April 1st.
	assert.Equal(t, day(2025, time.April, 1), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(day(2025, time.April, 5), day(2025, time.April, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day(2025, time.April, 5), day(2025, time.April, 5))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewNormalizesTimeOfDay(t *testing.T) {
	dr, err := New(
		time.Date(2025, time.April, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 4, 11, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.April, 1), dr.CheckIn)
	assert.Equal(t, day(2025, time.April, 4), dr.CheckOut)
	assert.Equal(t, 3, dr.Nights())
}

func TestEnumerateNightsExcludesCheckout(t *testing.T) {
	dr, err := New(day(2025, time.April, 1), day(2025, time.April, 4))
	require.NoError(t, err)

	nights := dr.EnumerateNights()
	require.Len(t, nights, 3)
	assert.Equal(t, day(2025, time.April, 1), nights[0])
	assert.Equal(t, day(2025, time.April, 2), nights[1])
	assert.Equal(t, day(2025, time.April, 3), nights[2])
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a, _ := New(day(2025, time.April, 1), day(2025, time.April, 5))
	b, _ := New(day(2025, time.April, 5), day(2025, time.April, 8))
	c, _ := New(day(2025, time.April, 4), day(2025, time.April, 6))

	// Back-to-back stays share a turnover day, not a night.
	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}

func TestContainsDate(t *testing.T) {
	dr, _ := New(day(2025, time.April, 1), day(2025, time.April, 5))
	assert.True(t, dr.ContainsDate(day(2025, time.April, 1)))
	assert.True(t, dr.ContainsDate(day(2025, time.April, 4)))
	assert.False(t, dr.ContainsDate(day(2025, time.April, 5)))
	assert.False(t, dr.ContainsDate(day(2025, time.March, 31)))
}

func TestMerge(t *testing.T) {
	a, _ := New(day(2025, time.April, 1), day(2025, time.April, 5))
	b, _ := New(day(2025, time.April, 5), day(2025, time.April, 8))
	merged, ok := a.Merge(b)
	require.True(t, ok)
	assert.Equal(t, day(2025, time.April, 1), merged.CheckIn)
	assert.Equal(t, day(2025, time.April, 8), merged.CheckOut)

	far, _ := New(day(2025, time.May, 1), day(2025, time.May, 3))
	_, ok = a.Merge(far)
	assert.False(t, ok)
}
