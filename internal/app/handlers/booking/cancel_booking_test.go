package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
)

func (f *fixture) cancelHandler() *CancelBookingHandler {
	return &CancelBookingHandler{
		UoWFactory: f.factory,
		Payments:   f.payments,
		Outbox:     f.outbox,
		Now:        func() time.Time { return f.now },
	}
}

func (f *fixture) confirmedBooking(t *testing.T, id string, checkIn, checkOut time.Time) *RequestBookingResult {
	t.Helper()
	req := f.requestBooking(t, id, checkIn, checkOut)
	_, err := f.confirmHandler().Handle(context.Background(), ConfirmBookingCommand{
		Reference: req.Reference,
		PaymentID: "pi_test",
	})
	require.NoError(t, err)
	return req
}

func TestCancelReleasesDatesAndRefunds(t *testing.T) {
	f := newFixture(t)
	f.confirmedBooking(t, "bkg-1", day(2025, time.April, 1), day(2025, time.April, 5))

	result, err := f.cancelHandler().Handle(context.Background(), CancelBookingCommand{
		BookingID: "bkg-1",
		GuestID:   "guest-1",
		Reason:    "change of plans",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StateCancelled), result.Status)
	// No penalty percents on the snapshot, so the refund is the full total.
	assert.Equal(t, int64(0), result.Penalty.Amount)
	assert.Positive(t, result.Refund.Amount)

	cal, err := f.factory.OccupancyRepo.Calendar(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Empty(t, cal.Blocks)

	f.payments.mu.Lock()
	defer f.payments.mu.Unlock()
	assert.Equal(t, []string{"pi_test"}, f.payments.refunds)
}

func TestCancelFreesDatesForRebooking(t *testing.T) {
	f := newFixture(t)
	f.confirmedBooking(t, "bkg-1", day(2025, time.April, 1), day(2025, time.April, 5))

	_, err := f.cancelHandler().Handle(context.Background(), CancelBookingCommand{
		BookingID: "bkg-1",
		GuestID:   "guest-1",
	})
	require.NoError(t, err)

	// The same dates can be booked and confirmed again.
	req := f.requestBooking(t, "bkg-2", day(2025, time.April, 1), day(2025, time.April, 5))
	result, err := f.confirmHandler().Handle(context.Background(), ConfirmBookingCommand{
		Reference: req.Reference,
		PaymentID: "pi_test",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StateConfirmed), result.Status)
}

func TestCancelPendingBookingRejected(t *testing.T) {
	f := newFixture(t)
	f.requestBooking(t, "bkg-1", day(2025, time.April, 1), day(2025, time.April, 5))

	_, err := f.cancelHandler().Handle(context.Background(), CancelBookingCommand{
		BookingID: "bkg-1",
		GuestID:   "guest-1",
	})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
}

func TestCancelByAnotherGuestForbidden(t *testing.T) {
	f := newFixture(t)
	f.confirmedBooking(t, "bkg-1", day(2025, time.April, 1), day(2025, time.April, 5))

	_, err := f.cancelHandler().Handle(context.Background(), CancelBookingCommand{
		BookingID: "bkg-1",
		GuestID:   "guest-2",
	})
	assert.ErrorIs(t, err, ErrNotBookingOwner)
}
