package policies

import (
	"context"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

// PaymentQuote is what the core hands the payment collaborator to start
// a capture; the reference ties the eventual confirmation back to us.
type PaymentQuote struct {
	PropertyID string
	Total      money.Money
	Reference  string
}

// PaymentsPort is the outbound contract to the external payment
// processor. All calls must run under caller-enforced deadlines; a
// timeout surfaces as a retryable error, never a dropped booking.
type PaymentsPort interface {
	InitiatePayment(ctx context.Context, quote PaymentQuote) (paymentIntentID string, err error)
	Refund(ctx context.Context, paymentID string, amount money.Money, reason string) error
}
