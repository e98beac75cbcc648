package availability

import (
	"time"

	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/property"
	"github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/shared/daterange"
)

// Reason identifies why a candidate range cannot be booked. All reasons
// are guest-correctable and are surfaced verbatim, never logged as
// system errors.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInvalidRange       Reason = "InvalidRange"
	ReasonInsufficientNotice Reason = "InsufficientNotice"
	ReasonBelowMinStay       Reason = "BelowMinStay"
	ReasonAboveMaxStay       Reason = "AboveMaxStay"
	ReasonDateConflict       Reason = "DateConflict"
	ReasonDateBlocked        Reason = "DateBlocked"
)

// Result is a typed availability verdict. It is a value, not an error:
// the calling layer decides presentation.
type Result struct {
	OK     bool
	Reason Reason
}

func ok() Result           { return Result{OK: true} }
func fail(r Reason) Result { return Result{Reason: r} }

// Window is the occupied range of one existing confirmed booking.
type Window struct {
	BookingID string
	Range     daterange.DateRange
}

// CheckInput is a snapshot of everything the checker needs. Check has no
// side effects; because time passes between quote and payment, callers
// must re-reserve against the occupancy calendar at confirmation time.
type CheckInput struct {
	Range       daterange.DateRange
	Now         time.Time
	Rules       *property.BookingRules
	Existing    []Window // confirmed bookings for the same property
	Adjustments map[time.Time]property.PriceAdjustment
}

// Check validates a candidate [check-in, check-out) range against the
// property's confirmed bookings, stay rules, and blocked dates. The
// rejection order is fixed: range shape, notice, stay length, conflicts,
// blocks.
func Check(in CheckInput) Result {
	if in.Range.Validate() != nil {
		return fail(ReasonInvalidRange)
	}

	if in.Rules != nil && in.Rules.AdvanceNoticeDays > 0 {
		earliest := daterange.NormalizeToDay(in.Now).AddDate(0, 0, in.Rules.AdvanceNoticeDays)
		if in.Range.CheckIn.Before(earliest) {
			return fail(ReasonInsufficientNotice)
		}
	}

	nights := in.Range.Nights()
	if in.Rules != nil {
		if nights < in.Rules.MinStay {
			return fail(ReasonBelowMinStay)
		}
		if nights > in.Rules.MaxStay {
			return fail(ReasonAboveMaxStay)
		}
	}

	for _, w := range in.Existing {
		if in.Range.Overlaps(w.Range) {
			return fail(ReasonDateConflict)
		}
	}

	for _, night := range in.Range.EnumerateNights() {
		if adj, found := in.Adjustments[night]; found && adj.Blocked {
			return fail(ReasonDateBlocked)
		}
	}

	return ok()
}
