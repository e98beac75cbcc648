package ginserver

import (
	"errors"
	"io"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	BookingApp "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/booking"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/infra/payments"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives payment-processor notifications. Malformed
// deliveries get a 200 so the processor stops retrying them; transient
// failures get a 5xx and are retried.
type WebhookHandler struct {
	Commands commands.Bus
}

func (h WebhookHandler) PaymentConfirmed(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	conf, err := payments.DecodeConfirmation(body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "error": payments.ErrMalformedPayload.Error()})
		return
	}

	cmd := BookingApp.ConfirmBookingCommand{
		Reference:       conf.Reference,
		PaymentID:       conf.PaymentID,
		IdempotencyKeyV: conf.Reference + ":" + conf.PaymentID,
	}
	result, err := commands.Dispatch[BookingApp.ConfirmBookingCommand, *BookingApp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		switch {
		case errors.Is(err, domainbooking.ErrBookingNotFound),
			errors.Is(err, domainbooking.ErrReferenceMismatch):
			// Nothing to confirm; acknowledge so the processor stops.
			c.JSON(http.StatusOK, gin.H{"status": "ignored", "error": err.Error()})
		case errors.Is(err, domainbooking.ErrStaleState):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ WebhookHTTP = WebhookHandler{}
