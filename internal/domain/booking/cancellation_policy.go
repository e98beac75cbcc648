package booking

import (
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/money"
)

// CancellationPolicySnapshot freezes the property's cancellation terms
// at request time so later policy edits never change a booking's refund.
type CancellationPolicySnapshot struct {
	PolicyID                  string
	FreeCancellationUntil     time.Time
	PreCheckInPenaltyPercent  int
	PostCheckInPenaltyPercent int
}

// CalculateRefund splits the booking total into the guest's refund and
// the retained penalty. A booking without a policy refunds in full.
func (c CancellationPolicySnapshot) CalculateRefund(total money.Money, cancelAt, checkIn time.Time) (refund money.Money, penalty money.Money, err error) {
	if cancelAt.IsZero() {
		cancelAt = time.Now().UTC()
	}
	penalty = total.Percent(float64(c.penaltyPercent(cancelAt, checkIn)))
	refund, err = total.Sub(penalty)
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	return refund, penalty, nil
}

func (c CancellationPolicySnapshot) penaltyPercent(cancelAt, checkIn time.Time) int {
	switch {
	case c.PolicyID == "":
		return 0
	case !cancelAt.Before(checkIn):
		return clampPercent(c.PostCheckInPenaltyPercent)
	case !c.FreeCancellationUntil.IsZero() && cancelAt.Before(c.FreeCancellationUntil):
		return 0
	default:
		return clampPercent(c.PreCheckInPenaltyPercent)
	}
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
