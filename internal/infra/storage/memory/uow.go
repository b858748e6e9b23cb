package memory

import (
	"context"
	"errors"
	"time"

	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	domainunit "stayloom/internal/domain/unit"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	UnitsRepo        *UnitRepository
	OccupancyLedger  *Ledger
	BookingsRepo     *BookingRepository
	TransactionsRepo *TransactionRepository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a unit of work. Writes apply to the shared stores immediately
// (the ledger's own lock stays the conflict authority) and each write records
// a compensating action, so Rollback removes exactly the rows this unit
// touched without disturbing concurrent units.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UnitsRepo == nil || f.OccupancyLedger == nil || f.BookingsRepo == nil || f.TransactionsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

// Unit is a uow.UnitOfWork over the in-memory stores with undo-log rollback.
type Unit struct {
	factory Factory
	undo    []func()
}

func (u *Unit) record(fn func()) {
	u.undo = append(u.undo, fn)
}

func (u *Unit) Units() domainunit.Repository { return txUnits{u} }

func (u *Unit) Occupancy() domainoccupancy.Ledger { return txLedger{u} }

func (u *Unit) Bookings() domainbooking.Repository { return txBookings{u} }

func (u *Unit) Transactions() domainbooking.TransactionRepository { return txTransactions{u} }

func (u *Unit) Commit(ctx context.Context) error {
	u.undo = nil
	return nil
}

// Rollback replays the compensations newest-first.
func (u *Unit) Rollback(ctx context.Context) error {
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
	return nil
}

type txUnits struct{ u *Unit }

func (t txUnits) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.Unit, error) {
	return t.u.factory.UnitsRepo.ByID(ctx, id)
}

func (t txUnits) List(ctx context.Context) ([]*domainunit.Unit, error) {
	return t.u.factory.UnitsRepo.List(ctx)
}

func (t txUnits) Save(ctx context.Context, unit *domainunit.Unit) error {
	repo := t.u.factory.UnitsRepo
	id := unit.ID
	prev := repo.snapshot(id)
	if err := repo.Save(ctx, unit); err != nil {
		return err
	}
	t.u.record(func() { repo.restore(id, prev) })
	return nil
}

type txBookings struct{ u *Unit }

func (t txBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return t.u.factory.BookingsRepo.ByID(ctx, id)
}

func (t txBookings) ByPaymentReference(ctx context.Context, ref string) (*domainbooking.Booking, error) {
	return t.u.factory.BookingsRepo.ByPaymentReference(ctx, ref)
}

func (t txBookings) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return t.u.factory.BookingsRepo.ListByGuest(ctx, guestID)
}

func (t txBookings) Save(ctx context.Context, booking *domainbooking.Booking) error {
	repo := t.u.factory.BookingsRepo
	id := booking.ID
	prev := repo.snapshot(id)
	if err := repo.Save(ctx, booking); err != nil {
		return err
	}
	t.u.record(func() { repo.restore(id, prev) })
	return nil
}

type txTransactions struct{ u *Unit }

func (t txTransactions) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainbooking.Transaction, error) {
	return t.u.factory.TransactionsRepo.ByBooking(ctx, bookingID)
}

func (t txTransactions) Save(ctx context.Context, tx *domainbooking.Transaction) error {
	repo := t.u.factory.TransactionsRepo
	id := tx.BookingID
	prev := repo.snapshot(id)
	if err := repo.Save(ctx, tx); err != nil {
		return err
	}
	t.u.record(func() { repo.restore(id, prev) })
	return nil
}

type txLedger struct{ u *Unit }

func (t txLedger) InsertEntries(ctx context.Context, entries []domainoccupancy.Entry) error {
	ledger := t.u.factory.OccupancyLedger
	if err := ledger.InsertEntries(ctx, entries); err != nil {
		return err
	}
	recorded := append([]domainoccupancy.Entry(nil), entries...)
	t.u.record(func() { ledger.dropEntries(recorded) })
	return nil
}

func (t txLedger) InsertEntriesTolerant(ctx context.Context, entries []domainoccupancy.Entry) ([]domainoccupancy.Entry, error) {
	ledger := t.u.factory.OccupancyLedger
	inserted, err := ledger.InsertEntriesTolerant(ctx, entries)
	if err != nil {
		return nil, err
	}
	if len(inserted) > 0 {
		recorded := append([]domainoccupancy.Entry(nil), inserted...)
		t.u.record(func() { ledger.dropEntries(recorded) })
	}
	return inserted, nil
}

func (t txLedger) DeleteByBooking(ctx context.Context, bookingID string) error {
	ledger := t.u.factory.OccupancyLedger
	removed := ledger.takeByBooking(bookingID)
	if len(removed) > 0 {
		t.u.record(func() { ledger.putRows(removed) })
	}
	return nil
}

func (t txLedger) ConflictingDates(ctx context.Context, unitID domainunit.UnitID, dates []time.Time) ([]time.Time, error) {
	return t.u.factory.OccupancyLedger.ConflictingDates(ctx, unitID, dates)
}

func (t txLedger) InsertBlocks(ctx context.Context, blocks []domainoccupancy.Block) error {
	ledger := t.u.factory.OccupancyLedger
	if err := ledger.InsertBlocks(ctx, blocks); err != nil {
		return err
	}
	recorded := append([]domainoccupancy.Block(nil), blocks...)
	t.u.record(func() { ledger.dropBlocks(recorded) })
	return nil
}

func (t txLedger) DeleteBlocks(ctx context.Context, unitID domainunit.UnitID, dates []time.Time) error {
	ledger := t.u.factory.OccupancyLedger
	removed := ledger.takeBlocks(unitID, dates)
	if len(removed) > 0 {
		t.u.record(func() { ledger.putRows(removed) })
	}
	return nil
}

func (t txLedger) Calendar(ctx context.Context, unitID domainunit.UnitID, from, to time.Time) ([]domainoccupancy.DayStatus, error) {
	return t.u.factory.OccupancyLedger.Calendar(ctx, unitID, from, to)
}

var (
	_ uow.UnitOfWork           = (*Unit)(nil)
	_ domainoccupancy.Ledger   = txLedger{}
	_ domainunit.Repository    = txUnits{}
	_ domainbooking.Repository = txBookings{}
)
