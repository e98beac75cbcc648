package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/commands"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/dto"
	BookingApp "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/handlers/booking"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/app/queries"
	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
	domainpricing "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/pricing"
	domainproperty "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type guestCountRequest struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Babies   int `json:"babies"`
	Pets     int `json:"pets"`
}

type quoteRequest struct {
	CheckIn  time.Time         `json:"check_in" binding:"required"`
	CheckOut time.Time         `json:"check_out" binding:"required"`
	Guests   guestCountRequest `json:"guests"`
}

func (h BookingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := BookingApp.GetQuoteQuery{
		PropertyID: c.Param("id"),
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     toGuestCount(req.Guests),
	}
	result, err := queries.Ask[BookingApp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createBookingRequest struct {
	PropertyID string            `json:"property_id" binding:"required"`
	GuestID    string            `json:"guest_id" binding:"required"`
	CheckIn    time.Time         `json:"check_in" binding:"required"`
	CheckOut   time.Time         `json:"check_out" binding:"required"`
	Guests     guestCountRequest `json:"guests"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.RequestBookingCommand{
		CommandID:       generateCommandID(),
		PropertyID:      req.PropertyID,
		GuestID:         req.GuestID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          toGuestCount(req.Guests),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.RequestBookingCommand, *BookingApp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

type cancelBookingRequest struct {
	GuestID string `json:"guest_id"`
	Reason  string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.CancelBookingCommand{
		BookingID:       c.Param("id"),
		GuestID:         req.GuestID,
		Reason:          req.Reason,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *BookingApp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListMine(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := BookingApp.ListGuestBookingsQuery{GuestID: c.Query("guest_id")}
	result, err := queries.Ask[BookingApp.ListGuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func toGuestCount(req guestCountRequest) domainpricing.GuestCount {
	return domainpricing.GuestCount{
		Adults:   req.Adults,
		Children: req.Children,
		Babies:   req.Babies,
		Pets:     req.Pets,
	}
}

// writeBookingError maps domain failures to HTTP statuses. Availability
// rejections are user-correctable and returned with their reason.
func writeBookingError(c *gin.Context, err error) {
	var unavailable BookingApp.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "stay unavailable", "reason": string(unavailable.Reason)})
	case errors.Is(err, domainproperty.ErrPropertyNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainbooking.ErrInvalidGuests):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domainpricing.ErrMissingRatePlan),
		errors.Is(err, domainproperty.ErrNoNightlyRate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, BookingApp.ErrNotBookingOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
