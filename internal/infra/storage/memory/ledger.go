package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainoccupancy "stayloom/internal/domain/occupancy"
	"stayloom/internal/domain/shared/daterange"
	domainunit "stayloom/internal/domain/unit"
)

type dayKey struct {
	unitID domainunit.UnitID
	day    string
}

type ledgerRow struct {
	entry *domainoccupancy.Entry
	block *domainoccupancy.Block
}

// Ledger is the in-memory occupancy ledger. A single map keyed by
// (unit, day) mirrors the unique index the database variant relies on, so
// bookings and admin blocks collide with each other exactly as in production.
type Ledger struct {
	mu   sync.Mutex
	rows map[dayKey]ledgerRow
}

func NewLedger() *Ledger {
	return &Ledger{rows: make(map[dayKey]ledgerRow)}
}

func keyFor(unitID domainunit.UnitID, date time.Time) dayKey {
	return dayKey{unitID: unitID, day: daterange.DayKey(date)}
}

// InsertEntries writes every entry or none: colliding dates are collected and
// returned as a *DateConflictError without touching the map.
func (l *Ledger) InsertEntries(ctx context.Context, entries []domainoccupancy.Entry) error {
	if len(entries) == 0 {
		return domainoccupancy.ErrNoEntries
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var conflicts []time.Time
	for _, e := range entries {
		if _, taken := l.rows[keyFor(e.UnitID, e.Date)]; taken {
			conflicts = append(conflicts, e.Date)
		}
	}
	if len(conflicts) > 0 {
		return &domainoccupancy.DateConflictError{UnitID: entries[0].UnitID, Dates: conflicts}
	}
	for _, e := range entries {
		copied := e
		l.rows[keyFor(e.UnitID, e.Date)] = ledgerRow{entry: &copied}
	}
	return nil
}

// InsertEntriesTolerant writes what it can and reports the subset inserted.
func (l *Ledger) InsertEntriesTolerant(ctx context.Context, entries []domainoccupancy.Entry) ([]domainoccupancy.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inserted := make([]domainoccupancy.Entry, 0, len(entries))
	for _, e := range entries {
		key := keyFor(e.UnitID, e.Date)
		if _, taken := l.rows[key]; taken {
			continue
		}
		copied := e
		l.rows[key] = ledgerRow{entry: &copied}
		inserted = append(inserted, e)
	}
	return inserted, nil
}

func (l *Ledger) DeleteByBooking(ctx context.Context, bookingID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, row := range l.rows {
		if row.entry != nil && row.entry.BookingID == bookingID {
			delete(l.rows, key)
		}
	}
	return nil
}

func (l *Ledger) ConflictingDates(ctx context.Context, unitID domainunit.UnitID, dates []time.Time) ([]time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var conflicts []time.Time
	for _, d := range dates {
		if _, taken := l.rows[keyFor(unitID, d)]; taken {
			conflicts = append(conflicts, d)
		}
	}
	return conflicts, nil
}

func (l *Ledger) InsertBlocks(ctx context.Context, blocks []domainoccupancy.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var conflicts []time.Time
	for _, b := range blocks {
		if _, taken := l.rows[keyFor(b.UnitID, b.Date)]; taken {
			conflicts = append(conflicts, b.Date)
		}
	}
	if len(conflicts) > 0 {
		return &domainoccupancy.DateConflictError{UnitID: blocks[0].UnitID, Dates: conflicts}
	}
	for _, b := range blocks {
		copied := b
		l.rows[keyFor(b.UnitID, b.Date)] = ledgerRow{block: &copied}
	}
	return nil
}

func (l *Ledger) DeleteBlocks(ctx context.Context, unitID domainunit.UnitID, dates []time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range dates {
		key := keyFor(unitID, d)
		if row, ok := l.rows[key]; ok && row.block != nil {
			delete(l.rows, key)
		}
	}
	return nil
}

func (l *Ledger) Calendar(ctx context.Context, unitID domainunit.UnitID, from, to time.Time) ([]domainoccupancy.DayStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var statuses []domainoccupancy.DayStatus
	for key, row := range l.rows {
		if key.unitID != unitID {
			continue
		}
		day, err := time.Parse("2006-01-02", key.day)
		if err != nil {
			continue
		}
		if day.Before(from) || !day.Before(to) {
			continue
		}
		status := domainoccupancy.DayStatus{Date: day}
		if row.entry != nil {
			status.Booked = !row.entry.Buffer
			status.Buffer = row.entry.Buffer
		}
		if row.block != nil {
			status.Blocked = true
			status.Reason = row.block.Reason
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Date.Before(statuses[j].Date) })
	return statuses, nil
}

// dropEntries removes rows a unit of work inserted, matching on owner and
// date so a concurrent re-insertion by another booking is never touched.
func (l *Ledger) dropEntries(entries []domainoccupancy.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		key := keyFor(e.UnitID, e.Date)
		if row, ok := l.rows[key]; ok && row.entry != nil && row.entry.BookingID == e.BookingID {
			delete(l.rows, key)
		}
	}
}

func (l *Ledger) dropBlocks(blocks []domainoccupancy.Block) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range blocks {
		key := keyFor(b.UnitID, b.Date)
		if row, ok := l.rows[key]; ok && row.block != nil {
			delete(l.rows, key)
		}
	}
}

// takeByBooking deletes and returns every row the booking owns so a rollback
// can put them back.
func (l *Ledger) takeByBooking(bookingID string) map[dayKey]ledgerRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := make(map[dayKey]ledgerRow)
	for key, row := range l.rows {
		if row.entry != nil && row.entry.BookingID == bookingID {
			removed[key] = row
			delete(l.rows, key)
		}
	}
	return removed
}

func (l *Ledger) takeBlocks(unitID domainunit.UnitID, dates []time.Time) map[dayKey]ledgerRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := make(map[dayKey]ledgerRow)
	for _, d := range dates {
		key := keyFor(unitID, d)
		if row, ok := l.rows[key]; ok && row.block != nil {
			removed[key] = row
			delete(l.rows, key)
		}
	}
	return removed
}

func (l *Ledger) putRows(rows map[dayKey]ledgerRow) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, row := range rows {
		if _, taken := l.rows[key]; taken {
			continue
		}
		l.rows[key] = row
	}
}

var _ domainoccupancy.Ledger = (*Ledger)(nil)
