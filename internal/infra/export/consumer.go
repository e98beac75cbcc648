package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

const confirmedEventType = "booking.confirmed.v1"

// Consumer feeds confirmed-booking events from the broker into the
// table sync. Failed pushes are not marked consumed so the group
// redelivers them; everything else is acknowledged immediately.
type Consumer struct {
	Sync   *TableSync
	Logger *slog.Logger
}

type cloudEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type confirmedPayload struct {
	BookingID  string `json:"BookingID"`
	PropertyID string `json:"PropertyID"`
	GuestID    string `json:"GuestID"`
	Reference  string `json:"Reference"`
	Range      struct {
		CheckIn  time.Time `json:"CheckIn"`
		CheckOut time.Time `json:"CheckOut"`
	} `json:"Range"`
	Total struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"Total"`
	At time.Time `json:"At"`
}

func (c *Consumer) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		// Undecodable messages are dropped, redelivery cannot fix them.
		if c.Logger != nil {
			c.Logger.Warn("dropping undecodable event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}
	if evt.Type != confirmedEventType {
		return nil
	}

	var payload confirmedPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		if c.Logger != nil {
			c.Logger.Warn("dropping malformed confirmation event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}

	row := Row{
		BookingID:   payload.BookingID,
		Reference:   payload.Reference,
		PropertyID:  payload.PropertyID,
		GuestID:     payload.GuestID,
		CheckIn:     payload.Range.CheckIn.Format(time.DateOnly),
		CheckOut:    payload.Range.CheckOut.Format(time.DateOnly),
		TotalCents:  payload.Total.Amount,
		Currency:    payload.Total.Currency,
		Status:      "CONFIRMED",
		ConfirmedAt: payload.At.Format(time.RFC3339),
	}
	return c.Sync.Push(ctx, row)
}
