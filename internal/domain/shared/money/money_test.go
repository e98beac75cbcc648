package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesCurrency(t *testing.T) {
	_, err := New(100, "EURO")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	m, err := New(100, "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", m.Currency)
}

func TestArithmeticRequiresMatchingCurrency(t *testing.T) {
	eur := Must(1000, "EUR")
	usd := Must(1000, "USD")

	_, err := eur.Add(usd)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := eur.Add(Must(250, "EUR"))
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount)

	diff, err := eur.Sub(Must(250, "EUR"))
	require.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount)
}

func TestPercentRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		amount int64
		pct    float64
		want   int64
	}{
		{10000, 10, 1000},
		{333, 10, 33},   // 33.3 rounds down
		{335, 10, 34},   // 33.5 rounds up
		{10000, 0, 0},
		{10000, 21, 2100}, // Spanish VAT rate
	}
	for _, tc := range cases {
		got := Must(tc.amount, "EUR").Percent(tc.pct)
		assert.Equal(t, tc.want, got.Amount, "%d @ %.1f%%", tc.amount, tc.pct)
		assert.Equal(t, "EUR", got.Currency)
	}
}

func TestMultiply(t *testing.T) {
	m := Must(9500, "EUR").Multiply(3)
	assert.Equal(t, Must(28500, "EUR"), m)
}
