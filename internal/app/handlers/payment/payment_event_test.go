package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayloom/internal/app/handlers/payment"
	"stayloom/internal/app/handlers/reservation"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	"stayloom/internal/domain/shared/money"
	domainunit "stayloom/internal/domain/unit"
	"stayloom/internal/infra/storage/memory"
)

type testEnv struct {
	factory memory.Factory
	ledger  *memory.Ledger
	clock   time.Time
}

// newBookedEnv seeds one unit and one pending three-night booking,
// March 1 through 4.
func newBookedEnv(t *testing.T) testEnv {
	t.Helper()
	env := testEnv{
		ledger: memory.NewLedger(),
		clock:  time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC),
	}
	env.factory = memory.Factory{
		UnitsRepo:        memory.NewUnitRepository(),
		OccupancyLedger:  env.ledger,
		BookingsRepo:     memory.NewBookingRepository(),
		TransactionsRepo: memory.NewTransactionRepository(),
	}

	u, err := domainunit.NewUnit(domainunit.CreateParams{
		ID:          "unit-1",
		Name:        "Seaside Loft",
		NightlyRate: money.Must(15000, "USD"),
		MaxGuests:   4,
		Available:   true,
		Now:         env.clock,
	})
	require.NoError(t, err)
	require.NoError(t, env.factory.UnitsRepo.Save(context.Background(), u))

	create := &reservation.CreateReservationHandler{
		UoWFactory: env.factory,
		Payments:   memory.Payments{},
		Outbox:     memory.NewOutbox(),
		Now:        func() time.Time { return env.clock },
	}
	_, err = create.Handle(context.Background(), reservation.CreateReservationCommand{
		CommandID:    "bk-1",
		UnitID:       "unit-1",
		GuestID:      "guest-1",
		ContactName:  "Ada Lovelace",
		ContactEmail: "ada@example.com",
		CheckIn:      time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		Guests:       1,
	})
	require.NoError(t, err)
	return env
}

func (env testEnv) handler() *payment.PaymentEventHandler {
	return &payment.PaymentEventHandler{
		UoWFactory:   env.factory,
		Outbox:       memory.NewOutbox(),
		BufferBefore: 1,
		BufferAfter:  1,
		Now:          func() time.Time { return env.clock },
	}
}

func TestPaymentSucceededConfirmsAndAddsBuffers(t *testing.T) {
	env := newBookedEnv(t)

	result, err := env.handler().Handle(context.Background(), payment.PaymentEventCommand{
		PaymentReference: "cs_123",
		BookingID:        "bk-1",
		Outcome:          payment.OutcomeSucceeded,
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, string(domainbooking.StateConfirmed), result.State)

	booking, err := env.factory.BookingsRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StateConfirmed, booking.State)
	assert.Equal(t, "cs_123", booking.PaymentReference)

	ledgerTx, err := env.factory.TransactionsRepo.ByBooking(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.TransactionCompleted, ledgerTx.Status)

	// buffer days flank the stay
	conflicts, err := env.ledger.ConflictingDates(context.Background(), "unit-1", []time.Time{
		time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)
}

func TestPaymentSucceededToleratesOccupiedBufferDay(t *testing.T) {
	env := newBookedEnv(t)

	// a neighbouring stay already holds the would-be trailing buffer day
	require.NoError(t, env.ledger.InsertEntries(context.Background(), []domainoccupancy.Entry{
		{UnitID: "unit-1", Date: time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC), BookingID: "bk-other"},
	}))

	result, err := env.handler().Handle(context.Background(), payment.PaymentEventCommand{
		PaymentReference: "cs_123",
		BookingID:        "bk-1",
		Outcome:          payment.OutcomeSucceeded,
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)
}

func TestPaymentEventRedeliveryIsNoOp(t *testing.T) {
	env := newBookedEnv(t)
	handler := env.handler()

	cmd := payment.PaymentEventCommand{
		PaymentReference: "cs_123",
		BookingID:        "bk-1",
		Outcome:          payment.OutcomeSucceeded,
	}
	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, string(domainbooking.StateConfirmed), result.State)
}

func TestPaymentFailedCancelsAndFreesDates(t *testing.T) {
	env := newBookedEnv(t)

	result, err := env.handler().Handle(context.Background(), payment.PaymentEventCommand{
		PaymentReference: "cs_123",
		BookingID:        "bk-1",
		Outcome:          payment.OutcomeFailed,
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, string(domainbooking.StateCancelled), result.State)

	ledgerTx, err := env.factory.TransactionsRepo.ByBooking(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.TransactionFailed, ledgerTx.Status)

	conflicts, err := env.ledger.ConflictingDates(context.Background(), "unit-1", []time.Time{
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestPaymentEventUnknownBookingIsAcked(t *testing.T) {
	env := newBookedEnv(t)

	result, err := env.handler().Handle(context.Background(), payment.PaymentEventCommand{
		PaymentReference: "cs_999",
		BookingID:        "bk-missing",
		Outcome:          payment.OutcomeSucceeded,
	})
	require.NoError(t, err)
	assert.False(t, result.Applied)
}

func TestPaymentEventIdempotencyKey(t *testing.T) {
	cmd := payment.PaymentEventCommand{PaymentReference: "cs_1", BookingID: "bk-1"}
	assert.Equal(t, "cs_1:bk-1", cmd.IdempotencyKey())

	assert.Empty(t, payment.PaymentEventCommand{BookingID: "bk-1"}.IdempotencyKey())
}
