package availability

import (
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
)

type RangeBlocked struct {
	PropertyID property.PropertyID
	Range      daterange.DateRange
	Reason     BlockReason
	At         time.Time
}

func (e RangeBlocked) EventName() string     { return "availability.range_blocked" }
func (e RangeBlocked) AggregateID() string   { return string(e.PropertyID) }
func (e RangeBlocked) OccurredAt() time.Time { return e.At }

type RangeReleased struct {
	PropertyID property.PropertyID
	Range      daterange.DateRange
	Reason     BlockReason
	At         time.Time
}

func (e RangeReleased) EventName() string     { return "availability.range_released" }
func (e RangeReleased) AggregateID() string   { return string(e.PropertyID) }
func (e RangeReleased) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	PropertyID property.PropertyID
	Range      daterange.DateRange
	At         time.Time
}

func (e OverbookingPrevented) EventName() string     { return "availability.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return string(e.PropertyID) }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
