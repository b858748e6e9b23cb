package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayloom/internal/app/handlers/reservation"
	"stayloom/internal/app/policies"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	"stayloom/internal/domain/shared/daterange"
	"stayloom/internal/domain/shared/money"
	domainunit "stayloom/internal/domain/unit"
	"stayloom/internal/infra/storage/memory"
)

type failingPayments struct{}

func (failingPayments) CreateCheckoutSession(ctx context.Context, bookingID string, amount money.Money, successURL, cancelURL string) (policies.CheckoutSession, error) {
	return policies.CheckoutSession{}, errors.New("payments: gateway unreachable")
}

type testEnv struct {
	factory memory.Factory
	ledger  *memory.Ledger
	units   *memory.UnitRepository
	clock   time.Time
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	env := testEnv{
		ledger: memory.NewLedger(),
		units:  memory.NewUnitRepository(),
		clock:  time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC),
	}
	env.factory = memory.Factory{
		UnitsRepo:        env.units,
		OccupancyLedger:  env.ledger,
		BookingsRepo:     memory.NewBookingRepository(),
		TransactionsRepo: memory.NewTransactionRepository(),
	}

	u, err := domainunit.NewUnit(domainunit.CreateParams{
		ID:                   "unit-1",
		Name:                 "Seaside Loft",
		NightlyRate:          money.Must(15000, "USD"),
		ExtraGuestNightlyFee: money.Must(2000, "USD"),
		MaxGuests:            4,
		Available:            true,
		Now:                  env.clock,
	})
	require.NoError(t, err)
	require.NoError(t, env.units.Save(context.Background(), u))
	return env
}

func (env testEnv) createHandler() *reservation.CreateReservationHandler {
	return &reservation.CreateReservationHandler{
		UoWFactory: env.factory,
		Payments:   memory.Payments{},
		Outbox:     memory.NewOutbox(),
		Now:        func() time.Time { return env.clock },
	}
}

func baseCommand() reservation.CreateReservationCommand {
	return reservation.CreateReservationCommand{
		CommandID:    "bk-1",
		UnitID:       "unit-1",
		GuestID:      "guest-1",
		ContactName:  "Ada Lovelace",
		ContactEmail: "ada@example.com",
		CheckIn:      time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		Guests:       1,
	}
}

func TestCreateReservationQuotesAndLocksDates(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	result, err := handler.Handle(context.Background(), baseCommand())
	require.NoError(t, err)

	assert.Equal(t, "bk-1", result.BookingID)
	assert.Equal(t, int64(45000), result.Price.Total.Amount)
	assert.NotEmpty(t, result.CheckoutURL)

	booking, err := env.factory.BookingsRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatePending, booking.State)

	ledgerTx, err := env.factory.TransactionsRepo.ByBooking(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.TransactionPending, ledgerTx.Status)

	conflicts, err := env.ledger.ConflictingDates(context.Background(), "unit-1", []time.Time{
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	// three nights locked, checkout day still free
	assert.Len(t, conflicts, 3)
}

func TestCreateReservationMembershipDiscount(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	cmd := baseCommand()
	cmd.Guests = 2
	cmd.ActiveMembership = true

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	// 3*150 base + 3*20 extra guest = 510, minus 10%
	assert.Equal(t, int64(51000), result.Price.Subtotal.Amount)
	assert.Equal(t, int64(5100), result.Price.Discount.Amount)
	assert.Equal(t, int64(45900), result.Price.Total.Amount)
}

func TestCreateReservationConflictLeavesNoPartialRows(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	_, err := handler.Handle(context.Background(), baseCommand())
	require.NoError(t, err)

	overlapping := baseCommand()
	overlapping.CommandID = "bk-2"
	overlapping.CheckIn = time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	overlapping.CheckOut = time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)

	_, err = handler.Handle(context.Background(), overlapping)
	var conflictErr *domainoccupancy.DateConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Dates, 1)
	assert.Equal(t, "2026-03-03", daterange.DayKey(conflictErr.Dates[0]))

	// the failed attempt must not have claimed its free nights
	conflicts, err := env.ledger.ConflictingDates(context.Background(), "unit-1", []time.Time{
		time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	_, err = env.factory.BookingsRepo.ByID(context.Background(), "bk-2")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestCreateReservationRollsBackWhenCheckoutFails(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()
	handler.Payments = failingPayments{}

	_, err := handler.Handle(context.Background(), baseCommand())
	require.Error(t, err)

	// no partial state survives the failed attempt
	_, err = env.factory.BookingsRepo.ByID(context.Background(), "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)

	_, err = env.factory.TransactionsRepo.ByBooking(context.Background(), "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrTransactionNotFound)

	conflicts, err := env.ledger.ConflictingDates(context.Background(), "unit-1", []time.Time{
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	// the same request succeeds once the gateway is back
	handler.Payments = memory.Payments{}
	_, err = handler.Handle(context.Background(), baseCommand())
	assert.NoError(t, err)
}

func TestConcurrentOverlappingRequestsExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	second := baseCommand()
	second.CommandID = "bk-2"
	second.CheckIn = time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	second.CheckOut = time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)

	cmds := []reservation.CreateReservationCommand{baseCommand(), second}
	errs := make([]error, len(cmds))
	var wg sync.WaitGroup
	for i := range cmds {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = handler.Handle(context.Background(), cmds[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var conflictErr *domainoccupancy.DateConflictError
		require.ErrorAs(t, err, &conflictErr)
	}
	require.Equal(t, 1, winners, "exactly one of two overlapping requests may succeed")

	// the loser's booking row was rolled back
	existing := 0
	for _, id := range []domainbooking.BookingID{"bk-1", "bk-2"} {
		if _, err := env.factory.BookingsRepo.ByID(context.Background(), id); err == nil {
			existing++
		}
	}
	assert.Equal(t, 1, existing)

	// only the winner's three nights are occupied, whichever request won
	conflicts, err := env.ledger.ConflictingDates(context.Background(), "unit-1", []time.Time{
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, conflicts, 3)
}

func TestCreateReservationValidation(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	cmd := baseCommand()
	cmd.GuestID = ""
	cmd.ContactEmail = ""
	_, err := handler.Handle(context.Background(), cmd)
	var validationErr *domainbooking.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []string{"guest_id", "contact_email"}, validationErr.Missing)
}

func TestCreateReservationRejectsPastCheckIn(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	cmd := baseCommand()
	cmd.CheckIn = time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	cmd.CheckOut = time.Date(2026, time.January, 25, 0, 0, 0, 0, time.UTC)

	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainbooking.ErrCheckInInPast)
}

func TestCreateReservationCapacity(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	cmd := baseCommand()
	cmd.Guests = 5
	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, reservation.ErrCapacityExceeded)
}

func TestCreateReservationLongStayPolicy(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	short := baseCommand()
	short.Category = string(domainbooking.CategoryLongStay)
	short.CheckIn = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	short.CheckOut = time.Date(2026, time.March, 30, 0, 0, 0, 0, time.UTC) // 29 nights

	_, err := handler.Handle(context.Background(), short)
	var durationErr *domainbooking.DurationError
	require.ErrorAs(t, err, &durationErr)

	ok := baseCommand()
	ok.Category = string(domainbooking.CategoryLongStay)
	ok.CheckIn = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	ok.CheckOut = time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC) // 30 nights
	_, err = handler.Handle(context.Background(), ok)
	assert.NoError(t, err)
}

func TestCreateReservationUnavailableUnit(t *testing.T) {
	env := newTestEnv(t)
	handler := env.createHandler()

	u, err := env.units.ByID(context.Background(), "unit-1")
	require.NoError(t, err)
	u.Available = false
	require.NoError(t, env.units.Save(context.Background(), u))

	_, err = handler.Handle(context.Background(), baseCommand())
	assert.ErrorIs(t, err, domainunit.ErrUnavailable)
}

func TestCancelReservationFreesDatesForRebooking(t *testing.T) {
	env := newTestEnv(t)
	create := env.createHandler()

	_, err := create.Handle(context.Background(), baseCommand())
	require.NoError(t, err)

	cancel := &reservation.CancelReservationHandler{
		UoWFactory: env.factory,
		Outbox:     memory.NewOutbox(),
		Now:        func() time.Time { return env.clock },
	}
	result, err := cancel.Handle(context.Background(), reservation.CancelReservationCommand{
		BookingID: "bk-1",
		Reason:    "change of plans",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StateCancelled), result.State)

	ledgerTx, err := env.factory.TransactionsRepo.ByBooking(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.TransactionFailed, ledgerTx.Status)

	rebook := baseCommand()
	rebook.CommandID = "bk-2"
	_, err = create.Handle(context.Background(), rebook)
	assert.NoError(t, err)
}

func TestCancelReservationTerminalIsRejected(t *testing.T) {
	env := newTestEnv(t)
	create := env.createHandler()
	_, err := create.Handle(context.Background(), baseCommand())
	require.NoError(t, err)

	cancel := &reservation.CancelReservationHandler{
		UoWFactory: env.factory,
		Outbox:     memory.NewOutbox(),
	}
	_, err = cancel.Handle(context.Background(), reservation.CancelReservationCommand{BookingID: "bk-1"})
	require.NoError(t, err)

	_, err = cancel.Handle(context.Background(), reservation.CancelReservationCommand{BookingID: "bk-1"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
}

func TestBlockDatesPreventReservations(t *testing.T) {
	env := newTestEnv(t)

	block := &reservation.BlockDatesHandler{UoWFactory: env.factory}
	_, err := block.Handle(context.Background(), reservation.BlockDatesCommand{
		UnitID: "unit-1",
		Dates:  []time.Time{time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)},
		Reason: "deep clean",
	})
	require.NoError(t, err)

	_, err = env.createHandler().Handle(context.Background(), baseCommand())
	var conflictErr *domainoccupancy.DateConflictError
	require.ErrorAs(t, err, &conflictErr)

	unblock := &reservation.UnblockDatesHandler{UoWFactory: env.factory}
	_, err = unblock.Handle(context.Background(), reservation.UnblockDatesCommand{
		UnitID: "unit-1",
		Dates:  []time.Time{time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	_, err = env.createHandler().Handle(context.Background(), baseCommand())
	assert.NoError(t, err)
}
