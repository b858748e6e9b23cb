package booking

import (
	"errors"
	"fmt"
	"time"

	"stayloom/internal/domain/shared/daterange"
)

var (
	ErrUnknownCategory = errors.New("booking: unknown category")
	ErrCheckInInPast   = errors.New("booking: check-in date is in the past")
)

// Category selects the duration policy applied to a reservation.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryLongStay Category = "long_stay"
)

// Long-stay reservations (artist residencies) are bounded in length.
const (
	LongStayMinNights = 30
	LongStayMaxNights = 180
)

func (c Category) Valid() bool {
	return c == CategoryStandard || c == CategoryLongStay
}

// DurationError carries the computed night count so callers can render a
// precise message.
type DurationError struct {
	Category Category
	Nights   int
	Min      int
	Max      int
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("booking: %s duration of %d nights outside allowed %d..%d", e.Category, e.Nights, e.Min, e.Max)
}

// ValidateDuration checks a date range length against the category policy.
// Pure: no clock, no I/O.
func ValidateDuration(category Category, dr daterange.DateRange) error {
	nights := dr.Nights()
	switch category {
	case CategoryStandard:
		if nights <= 0 {
			return &DurationError{Category: category, Nights: nights, Min: 1, Max: daterange.MaxNights}
		}
		return nil
	case CategoryLongStay:
		if nights < LongStayMinNights || nights > LongStayMaxNights {
			return &DurationError{Category: category, Nights: nights, Min: LongStayMinNights, Max: LongStayMaxNights}
		}
		return nil
	default:
		return ErrUnknownCategory
	}
}

// ValidateDateRange rejects ranges that start before the current day.
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	today := daterange.Day(now)
	if dr.CheckIn.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}
