package occupancy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayloom/internal/domain/shared/daterange"
	"stayloom/internal/domain/unit"
)

var ErrNoEntries = errors.New("occupancy: no entries to insert")

// Entry marks one calendar day of a unit as unavailable. At most one entry
// may exist per (unit, date); the storage layer enforces this with a unique
// index, which is the sole double-booking arbiter.
type Entry struct {
	UnitID    unit.UnitID
	Date      time.Time
	BookingID string
	Buffer    bool
}

// Block is an administrator-placed unavailability, independent of bookings.
// It lives in the same uniqueness space as Entry.
type Block struct {
	UnitID unit.UnitID
	Date   time.Time
	Reason string
}

// DayStatus describes one calendar day in a unit's availability view.
type DayStatus struct {
	Date    time.Time
	Booked  bool
	Buffer  bool
	Blocked bool
	Reason  string
}

// DateConflictError reports the dates that collided with existing occupancy
// or admin blocks.
type DateConflictError struct {
	UnitID unit.UnitID
	Dates  []time.Time
}

func (e *DateConflictError) Error() string {
	keys := make([]string, 0, len(e.Dates))
	for _, d := range e.Dates {
		keys = append(keys, daterange.DayKey(d))
	}
	return fmt.Sprintf("occupancy: dates unavailable for unit %s: %s", e.UnitID, strings.Join(keys, ", "))
}

// Ledger is the authoritative record of unavailable (unit, date) pairs.
//
// InsertEntries is all-or-nothing: if any date collides with an existing
// entry or block, no entry is written and a *DateConflictError is returned.
// InsertEntriesTolerant skips colliding dates and reports what was written;
// it exists only for buffer days, which may be omitted without failing a
// confirmation.
type Ledger interface {
	InsertEntries(ctx context.Context, entries []Entry) error
	InsertEntriesTolerant(ctx context.Context, entries []Entry) (inserted []Entry, err error)
	DeleteByBooking(ctx context.Context, bookingID string) error
	ConflictingDates(ctx context.Context, unitID unit.UnitID, dates []time.Time) ([]time.Time, error)
	InsertBlocks(ctx context.Context, blocks []Block) error
	DeleteBlocks(ctx context.Context, unitID unit.UnitID, dates []time.Time) error
	Calendar(ctx context.Context, unitID unit.UnitID, from, to time.Time) ([]DayStatus, error)
}

// StayEntries expands a booking's date range into ledger entries, one per
// night of the half-open range.
func StayEntries(unitID unit.UnitID, bookingID string, dr daterange.DateRange) []Entry {
	days := dr.Days()
	entries := make([]Entry, 0, len(days))
	for _, day := range days {
		entries = append(entries, Entry{UnitID: unitID, Date: day, BookingID: bookingID})
	}
	return entries
}

// BufferEntries yields the turnover days adjacent to a confirmed stay:
// before days immediately preceding check-in and after days immediately
// following the last night.
func BufferEntries(unitID unit.UnitID, bookingID string, dr daterange.DateRange, before, after int) []Entry {
	entries := make([]Entry, 0, before+after)
	for i := before; i >= 1; i-- {
		entries = append(entries, Entry{
			UnitID:    unitID,
			Date:      dr.CheckIn.AddDate(0, 0, -i),
			BookingID: bookingID,
			Buffer:    true,
		})
	}
	for i := 0; i < after; i++ {
		entries = append(entries, Entry{
			UnitID:    unitID,
			Date:      dr.CheckOut.AddDate(0, 0, i),
			BookingID: bookingID,
			Buffer:    true,
		})
	}
	return entries
}
