package availability

import (
	"context"
	"errors"
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/events"
)

var (
	ErrOverlappingRange = errors.New("availability: range overlaps with an existing block")
	ErrRangeNotFound    = errors.New("availability: range not found")
	// ErrVersionConflict is returned by OccupancyRepository.Save when the
	// stored calendar moved on since it was read. Stores wrap or return it
	// directly so callers can retry without knowing the backend.
	ErrVersionConflict = errors.New("availability: calendar changed concurrently")
)

type BlockReason string

const (
	ReasonBooking   BlockReason = "BOOKING"
	ReasonHostBlock BlockReason = "HOST_BLOCK"
)

type Block struct {
	Range     daterange.DateRange
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

// OccupancyCalendar is the authoritative record of which ranges a
// property's confirmed bookings hold. It is the compare-and-set target
// for confirmation: repositories persist it with a version-guarded
// write, so of two racing confirmations exactly one lands.
type OccupancyCalendar struct {
	PropertyID property.PropertyID
	Blocks     []Block
	Version    int64
	events.EventRecorder
}

type OccupancyRepository interface {
	Calendar(ctx context.Context, id property.PropertyID) (*OccupancyCalendar, error)
	// Save persists the calendar only if its Version still matches the
	// stored one, returning the store's concurrent-update error otherwise.
	Save(ctx context.Context, calendar *OccupancyCalendar) error
}

func NewCalendar(id property.PropertyID) *OccupancyCalendar {
	return &OccupancyCalendar{PropertyID: id}
}

func (c *OccupancyCalendar) CanReserve(r daterange.DateRange) bool {
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

// Windows exposes the booking-held blocks as checker input.
func (c *OccupancyCalendar) Windows() []Window {
	windows := make([]Window, 0, len(c.Blocks))
	for _, block := range c.Blocks {
		if block.Reason != ReasonBooking {
			continue
		}
		windows = append(windows, Window{BookingID: block.Reference, Range: block.Range})
	}
	return windows
}

// Reserve claims the range for a booking. The caller must Save the
// calendar before treating the reservation as held.
func (c *OccupancyCalendar) Reserve(r daterange.DateRange, bookingID string, now time.Time) error {
	if !c.CanReserve(r) {
		c.Record(OverbookingPrevented{PropertyID: c.PropertyID, Range: r, At: now.UTC()})
		return ErrOverlappingRange
	}
	c.Blocks = append(c.Blocks, Block{Range: r, Reason: ReasonBooking, Reference: bookingID, CreatedAt: now.UTC()})
	c.Record(RangeBlocked{PropertyID: c.PropertyID, Range: r, Reason: ReasonBooking, At: now.UTC()})
	return nil
}

// BlockRange records a host-initiated block (maintenance, personal use).
func (c *OccupancyCalendar) BlockRange(r daterange.DateRange, reference string, now time.Time) error {
	if !c.CanReserve(r) {
		return ErrOverlappingRange
	}
	c.Blocks = append(c.Blocks, Block{Range: r, Reason: ReasonHostBlock, Reference: reference, CreatedAt: now.UTC()})
	c.Record(RangeBlocked{PropertyID: c.PropertyID, Range: r, Reason: ReasonHostBlock, At: now.UTC()})
	return nil
}

// Release drops the block held under the given reference, typically on
// cancellation.
func (c *OccupancyCalendar) Release(reference string, now time.Time) error {
	idx := -1
	for i, block := range c.Blocks {
		if block.Reference == reference {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRangeNotFound
	}
	removed := c.Blocks[idx]
	c.Blocks = append(c.Blocks[:idx], c.Blocks[idx+1:]...)
	c.Record(RangeReleased{PropertyID: c.PropertyID, Range: removed.Range, Reason: removed.Reason, At: now.UTC()})
	return nil
}
