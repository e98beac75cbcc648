package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedEvent(t *testing.T) []byte {
	t.Helper()
	payload := map[string]any{
		"BookingID":  "bkg-1",
		"PropertyID": "prop-1",
		"GuestID":    "guest-1",
		"Reference":  "SHR-2025-000123",
		"Range": map[string]any{
			"CheckIn":  time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC),
			"CheckOut": time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC),
		},
		"Total": map[string]any{"amount": 47432, "currency": "EUR"},
		"At":    time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	evt, err := json.Marshal(map[string]any{
		"specversion": "1.0",
		"type":        "booking.confirmed.v1",
		"source":      "app://holidayrentals",
		"data":        json.RawMessage(data),
	})
	require.NoError(t, err)
	return evt
}

func TestConsumerPushesConfirmedRow(t *testing.T) {
	var got Row
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	consumer := &Consumer{Sync: &TableSync{Client: server.Client(), Endpoint: server.URL}}
	msg := &sarama.ConsumerMessage{Topic: "shr.booking.events.v1", Value: confirmedEvent(t)}

	require.NoError(t, consumer.Handle(context.Background(), msg))
	require.Equal(t, 1, calls)
	assert.Equal(t, "bkg-1", got.BookingID)
	assert.Equal(t, "SHR-2025-000123", got.Reference)
	assert.Equal(t, "guest-1", got.GuestID)
	assert.Equal(t, "2025-04-07", got.CheckIn)
	assert.Equal(t, "2025-04-10", got.CheckOut)
	assert.Equal(t, int64(47432), got.TotalCents)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "CONFIRMED", got.Status)
	assert.Equal(t, "2025-04-01T12:00:00Z", got.ConfirmedAt)
}

func TestConsumerIgnoresOtherEventTypes(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	consumer := &Consumer{Sync: &TableSync{Client: server.Client(), Endpoint: server.URL}}
	evt, err := json.Marshal(map[string]any{"type": "booking.requested.v1", "data": map[string]any{}})
	require.NoError(t, err)

	require.NoError(t, consumer.Handle(context.Background(), &sarama.ConsumerMessage{Value: evt}))
	assert.Zero(t, calls)
}

func TestConsumerDropsUndecodableMessages(t *testing.T) {
	consumer := &Consumer{Sync: &TableSync{Client: http.DefaultClient, Endpoint: "http://unused.invalid"}}

	err := consumer.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")})
	assert.NoError(t, err)
}

func TestConsumerReturnsErrorOnPushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "table is read only", http.StatusConflict)
	}))
	defer server.Close()

	consumer := &Consumer{Sync: &TableSync{Client: server.Client(), Endpoint: server.URL}}
	err := consumer.Handle(context.Background(), &sarama.ConsumerMessage{Value: confirmedEvent(t)})
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 409")
}
