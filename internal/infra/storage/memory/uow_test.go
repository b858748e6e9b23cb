package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	domainunit "stayloom/internal/domain/unit"
)

func newTestFactory() Factory {
	return Factory{
		UnitsRepo:        NewUnitRepository(),
		OccupancyLedger:  NewLedger(),
		BookingsRepo:     NewBookingRepository(),
		TransactionsRepo: NewTransactionRepository(),
	}
}

func pendingBooking(id string) *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:      domainbooking.BookingID(id),
		UnitID:  domainunit.UnitID("unit-1"),
		GuestID: "guest-1",
		State:   domainbooking.StatePending,
	}
}

func TestUnitRollbackUndoesWrites(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()
	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)

	require.NoError(t, unit.Bookings().Save(ctx, pendingBooking("bk-1")))
	require.NoError(t, unit.Occupancy().InsertEntries(ctx, stay("unit-1", "bk-1",
		day(2026, time.March, 1), day(2026, time.March, 2))))
	require.NoError(t, unit.Transactions().Save(ctx, &domainbooking.Transaction{
		ID:        "tx-1",
		BookingID: "bk-1",
		Status:    domainbooking.TransactionPending,
	}))

	require.NoError(t, unit.Rollback(ctx))

	_, err = f.BookingsRepo.ByID(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)

	_, err = f.TransactionsRepo.ByBooking(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrTransactionNotFound)

	conflicts, err := f.OccupancyLedger.ConflictingDates(ctx, "unit-1", []time.Time{
		day(2026, time.March, 1), day(2026, time.March, 2),
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestUnitCommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()
	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)

	require.NoError(t, unit.Bookings().Save(ctx, pendingBooking("bk-1")))
	require.NoError(t, unit.Commit(ctx))

	// a rollback after commit (the deferred-cleanup pattern) changes nothing
	require.NoError(t, unit.Rollback(ctx))

	booking, err := f.BookingsRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatePending, booking.State)
}

func TestUnitRollbackRestoresDeletedRows(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()
	require.NoError(t, f.OccupancyLedger.InsertEntries(ctx, stay("unit-1", "bk-1",
		day(2026, time.March, 1), day(2026, time.March, 2))))

	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Occupancy().DeleteByBooking(ctx, "bk-1"))
	require.NoError(t, unit.Rollback(ctx))

	conflicts, err := f.OccupancyLedger.ConflictingDates(ctx, "unit-1", []time.Time{
		day(2026, time.March, 1), day(2026, time.March, 2),
	})
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)
}

func TestUnitRollbackRestoresPriorState(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()
	require.NoError(t, f.BookingsRepo.Save(ctx, pendingBooking("bk-1")))

	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	booking, err := unit.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	booking.State = domainbooking.StateConfirmed
	booking.PaymentReference = "cs_1"
	require.NoError(t, unit.Bookings().Save(ctx, booking))
	require.NoError(t, unit.Rollback(ctx))

	restored, err := f.BookingsRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatePending, restored.State)
	assert.Empty(t, restored.PaymentReference)

	_, err = f.BookingsRepo.ByPaymentReference(ctx, "cs_1")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestUnitRollbackLeavesOtherUnitsRowsAlone(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()

	winner, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	loser, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)

	require.NoError(t, winner.Occupancy().InsertEntries(ctx, stay("unit-1", "bk-1", day(2026, time.March, 1))))
	err = loser.Occupancy().InsertEntries(ctx, stay("unit-1", "bk-2", day(2026, time.March, 1)))
	var conflictErr *domainoccupancy.DateConflictError
	require.ErrorAs(t, err, &conflictErr)

	require.NoError(t, loser.Rollback(ctx))
	require.NoError(t, winner.Commit(ctx))

	conflicts, err := f.OccupancyLedger.ConflictingDates(ctx, "unit-1", []time.Time{day(2026, time.March, 1)})
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}
