package payments

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/policies"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

// OfflineProcessor satisfies the payments port without talking to a
// real gateway. Intents are minted locally and refunds only logged;
// the processor's actual protocol lives outside this service and
// reaches us through the webhook.
type OfflineProcessor struct {
	Logger *slog.Logger
}

func (p OfflineProcessor) InitiatePayment(ctx context.Context, quote policies.PaymentQuote) (string, error) {
	intentID := "pi_" + uuid.NewString()
	if p.Logger != nil {
		p.Logger.Info("payment intent created",
			"intent_id", intentID,
			"reference", quote.Reference,
			"amount", quote.Total.Amount,
			"currency", quote.Total.Currency)
	}
	return intentID, nil
}

func (p OfflineProcessor) Refund(ctx context.Context, paymentID string, amount money.Money, reason string) error {
	if p.Logger != nil {
		p.Logger.Info("refund requested",
			"payment_id", paymentID,
			"amount", amount.Amount,
			"currency", amount.Currency,
			"reason", reason)
	}
	return nil
}

var _ policies.PaymentsPort = OfflineProcessor{}
