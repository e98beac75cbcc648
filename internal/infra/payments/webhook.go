package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrMalformedPayload marks a webhook body that could not be decoded
// into a confirmation. Such deliveries are acknowledged and dropped;
// retrying them can never succeed.
var ErrMalformedPayload = errors.New("payments: malformed webhook payload")

// Confirmation is the typed payment-success notification from the
// processor. Reference ties it back to the pending booking.
type Confirmation struct {
	Reference      string    `json:"bookingReference"`
	PaymentID      string    `json:"paymentId"`
	AmountCaptured int64     `json:"amountCaptured"`
	Currency       string    `json:"currency"`
	CustomerEmail  string    `json:"customerEmail"`
	Timestamp      time.Time `json:"timestamp"`
}

// DecodeConfirmation parses a webhook body. Some processor deliveries
// arrive double-encoded, the JSON object serialized again as a JSON
// string; both forms decode to the same typed result.
func DecodeConfirmation(body []byte) (Confirmation, error) {
	raw := bytes.TrimSpace(body)
	if len(raw) == 0 {
		return Confirmation{}, ErrMalformedPayload
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Confirmation{}, ErrMalformedPayload
		}
		raw = []byte(inner)
	}
	var conf Confirmation
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&conf); err != nil {
		return Confirmation{}, ErrMalformedPayload
	}
	if strings.TrimSpace(conf.Reference) == "" || strings.TrimSpace(conf.PaymentID) == "" {
		return Confirmation{}, ErrMalformedPayload
	}
	return conf, nil
}
