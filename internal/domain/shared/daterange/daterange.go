package daterange

import (
	"errors"
	"time"
)

var (
	ErrZeroBoundary  = errors.New("daterange: checkin and checkout must be set")
	ErrEmptyRange    = errors.New("daterange: checkout must be after checkin")
	ErrTooManyNights = errors.New("daterange: range exceeds maximum length")
)

// MaxNights caps a single reservation's length; anything longer is a data
// entry mistake, not a stay.
const MaxNights = 366

const dayFormat = "2006-01-02"

// DateRange represents a half-open interval [checkIn, checkOut) of calendar
// days. Boundaries are normalized to midnight UTC, so two ranges built from
// different wall-clock times on the same day compare equal.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return DateRange{}, ErrZeroBoundary
	}
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !dr.CheckOut.After(dr.CheckIn) {
		return DateRange{}, ErrEmptyRange
	}
	if dr.Nights() > MaxNights {
		return DateRange{}, ErrTooManyNights
	}
	return dr, nil
}

// Day truncates a timestamp to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey renders a day as its canonical string form.
func DayKey(t time.Time) string {
	return Day(t).Format(dayFormat)
}

func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Days enumerates every night of the stay: check-in through the day before
// check-out.
func (dr DateRange) Days() []time.Time {
	nights := dr.Nights()
	if nights <= 0 {
		return nil
	}
	days := make([]time.Time, 0, nights)
	for d := dr.CheckIn; d.Before(dr.CheckOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) Contains(other DateRange) bool {
	return (dr.CheckIn.Before(other.CheckIn) || dr.CheckIn.Equal(other.CheckIn)) &&
		(dr.CheckOut.After(other.CheckOut) || dr.CheckOut.Equal(other.CheckOut))
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	day := Day(t)
	return (day.Equal(dr.CheckIn) || day.After(dr.CheckIn)) && day.Before(dr.CheckOut)
}
