package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// TableSync pushes confirmed-booking rows to an external tabular store
// by field-name mapping. It runs strictly after the confirmation write
// has committed; a failed push is logged and retried by redelivery,
// never allowed to touch the booking itself.
type TableSync struct {
	Client   *http.Client
	Endpoint string
	Logger   *slog.Logger
	Timeout  time.Duration
}

// Row is the flat field mapping the tabular store ingests. Keys mirror
// the store's column names.
type Row struct {
	BookingID   string `json:"booking_id"`
	Reference   string `json:"reference"`
	PropertyID  string `json:"property_id"`
	GuestID     string `json:"guest_id"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	TotalCents  int64  `json:"total_cents"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	ConfirmedAt string `json:"confirmed_at"`
}

func (t *TableSync) Push(ctx context.Context, row Row) error {
	if t == nil || t.Client == nil {
		return errors.New("export: http client not configured")
	}
	if t.Endpoint == "" {
		return errors.New("export: endpoint not configured")
	}
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(row)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(request)
	if err != nil {
		t.logError("table sync request failed", row.BookingID, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("export: table sync returned status %d: %s", resp.StatusCode, string(snippet))
		t.logError("table sync returned error", row.BookingID, err)
		return err
	}
	if t.Logger != nil {
		t.Logger.Debug("booking row exported", "booking_id", row.BookingID)
	}
	return nil
}

func (t *TableSync) logError(msg, bookingID string, err error) {
	if t.Logger == nil {
		return
	}
	t.Logger.Warn(msg, "booking_id", bookingID, "error", err)
}
