package booking

import (
	"context"
	"errors"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/pricing"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/events"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

var (
	ErrInvalidGuests        = errors.New("booking: at least one adult guest required")
	ErrInvalidState         = errors.New("booking: invalid state transition")
	ErrBookingNotFound      = errors.New("booking: not found")
	ErrReferenceMismatch    = errors.New("booking: payment reference does not match")
	ErrPaymentRequired      = errors.New("booking: payment id required before confirmation")
	ErrLostAvailabilityRace = errors.New("booking: dates no longer available")
	ErrStaleState           = errors.New("booking: state changed concurrently, retry")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCancelled BookingState = "CANCELLED"
	StateRejected  BookingState = "REJECTED"
)

// Booking is created PENDING when a payment attempt starts, becomes
// CONFIRMED only on a verified payment-success notification carrying its
// reference, and may end REJECTED (from pending) or CANCELLED (from
// confirmed). A confirmed booking's range is immutable and exclusively
// held in the property's occupancy calendar.
type Booking struct {
	ID         BookingID
	PropertyID property.PropertyID
	GuestID    string
	Range      daterange.DateRange
	Guests     pricing.GuestCount
	Price      pricing.Breakdown
	Reference  string
	PaymentID  string
	State      BookingState
	Policy     CancellationPolicySnapshot
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByReference(ctx context.Context, reference string) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	PropertyID property.PropertyID
	GuestID    string
	Range      daterange.DateRange
	Guests     pricing.GuestCount
	Price      pricing.Breakdown
	Reference  string
	Policy     CancellationPolicySnapshot
	CreatedAt  time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.Guests.Adults < 1 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Reference == "" {
		return nil, errors.New("booking: reference required")
	}
	if params.Price.Total.Amount <= 0 {
		return nil, errors.New("booking: total must be positive")
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		GuestID:    params.GuestID,
		Range:      params.Range,
		Guests:     params.Guests,
		Price:      params.Price.Copy(),
		Reference:  params.Reference,
		Policy:     params.Policy,
		State:      StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		Range:      b.Range,
		Reference:  b.Reference,
		Quoted:     b.Price.Total,
		At:         now,
	})
	return b, nil
}

// Confirm freezes the booking against a verified payment notification.
// The caller must already hold the occupancy reservation; Confirm only
// performs the state transition.
func (b *Booking) Confirm(reference, paymentID string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	if reference != b.Reference {
		return ErrReferenceMismatch
	}
	if paymentID == "" {
		return ErrPaymentRequired
	}
	b.PaymentID = paymentID
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		Range:      b.Range,
		Reference:  b.Reference,
		PaymentID:  paymentID,
		Total:      b.Price.Total,
		At:         b.UpdatedAt,
	})
	return nil
}

// Reject finalizes a pending booking that cannot proceed. When a payment
// was already captured the rejection flags it for a compensating refund
// by the payment collaborator.
func (b *Booking) Reject(reason string, capturedPaymentID string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateRejected
	b.UpdatedAt = now.UTC()
	b.Record(BookingRejected{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	if capturedPaymentID != "" {
		b.Record(RefundRequired{
			BookingID: b.ID,
			Reference: b.Reference,
			PaymentID: capturedPaymentID,
			Amount:    b.Price.Total,
			Reason:    reason,
			At:        b.UpdatedAt,
		})
	}
	return nil
}

// Cancel is allowed only on confirmed bookings; refund and penalty come
// from the policy snapshot taken at request time.
func (b *Booking) Cancel(reason string, now time.Time) (refund money.Money, penalty money.Money, err error) {
	if b.State != StateConfirmed {
		return money.Money{}, money.Money{}, ErrInvalidState
	}
	refund, penalty, err = b.Policy.CalculateRefund(b.Price.Total, now, b.Range.CheckIn)
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{
		BookingID: b.ID,
		Reference: b.Reference,
		Refund:    refund,
		Penalty:   penalty,
		Reason:    reason,
		At:        b.UpdatedAt,
	})
	return refund, penalty, nil
}
