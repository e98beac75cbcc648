package payments

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"bookingReference": "BKG-7KQ2M9XA",
		"paymentId":        "pi_123",
		"amountCaptured":   42000,
		"currency":         "EUR",
		"customerEmail":    "guest@example.com",
		"timestamp":        time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return body
}

func TestDecodeConfirmationPlain(t *testing.T) {
	conf, err := DecodeConfirmation(validBody(t))
	require.NoError(t, err)
	assert.Equal(t, "BKG-7KQ2M9XA", conf.Reference)
	assert.Equal(t, "pi_123", conf.PaymentID)
	assert.Equal(t, int64(42000), conf.AmountCaptured)
	assert.Equal(t, "guest@example.com", conf.CustomerEmail)
}

func TestDecodeConfirmationDoubleEncoded(t *testing.T) {
	// Some deliveries arrive as a JSON string wrapping the object.
	wrapped, err := json.Marshal(string(validBody(t)))
	require.NoError(t, err)

	conf, err := DecodeConfirmation(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "BKG-7KQ2M9XA", conf.Reference)
	assert.Equal(t, "pi_123", conf.PaymentID)
}

func TestDecodeConfirmationMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":              nil,
		"whitespace":         []byte("   "),
		"truncated json":     []byte(`{"bookingReference": "BKG-7KQ2M9XA"`),
		"string non-json":    []byte(`"not an object"`),
		"missing reference":  []byte(`{"paymentId":"pi_123"}`),
		"missing payment id": []byte(`{"bookingReference":"BKG-7KQ2M9XA"}`),
		"blank fields":       []byte(`{"bookingReference":"  ","paymentId":" "}`),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeConfirmation(body)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}
