package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayloom/internal/domain/pricing"
	"stayloom/internal/domain/shared/money"
	"stayloom/internal/domain/unit"
)

func fixtureBooking(t *testing.T) *Booking {
	t.Helper()
	price := pricing.Breakdown{
		Nights:   3,
		Nightly:  money.Must(15000, "USD"),
		Base:     money.Must(45000, "USD"),
		Subtotal: money.Must(45000, "USD"),
		Discount: money.Must(0, "USD"),
		Total:    money.Must(45000, "USD"),
	}
	b, err := NewBooking(CreateParams{
		ID:        "bk-1",
		UnitID:    unit.UnitID("unit-1"),
		GuestID:   "guest-1",
		Contact:   Contact{Name: "Ada", Email: "ada@example.com"},
		Range:     rangeOfNights(3),
		Guests:    2,
		Category:  CategoryStandard,
		Price:     price,
		CreatedAt: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingStartsPendingAndRecordsEvent(t *testing.T) {
	b := fixtureBooking(t)

	assert.Equal(t, StatePending, b.State)
	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "reservation.requested", events[0].EventName())
	assert.Equal(t, "bk-1", events[0].AggregateID())
}

func TestNewBookingListsAllMissingFields(t *testing.T) {
	_, err := NewBooking(CreateParams{
		Range:    rangeOfNights(2),
		Guests:   1,
		Category: CategoryStandard,
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []string{"unit_id", "guest_id", "contact_name", "contact_email"}, validationErr.Missing)
}

func TestConfirmFromPending(t *testing.T) {
	b := fixtureBooking(t)
	now := time.Date(2026, time.March, 1, 11, 0, 0, 0, time.UTC)

	require.NoError(t, b.Confirm("cs_123", now))
	assert.Equal(t, StateConfirmed, b.State)
	assert.Equal(t, "cs_123", b.PaymentReference)

	// confirming twice is a state violation
	assert.ErrorIs(t, b.Confirm("cs_456", now), ErrInvalidState)
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	now := time.Now().UTC()

	pending := fixtureBooking(t)
	require.NoError(t, pending.Cancel("guest change of plans", now))
	assert.Equal(t, StateCancelled, pending.State)
	assert.True(t, pending.Terminal())

	confirmed := fixtureBooking(t)
	require.NoError(t, confirmed.Confirm("cs_1", now))
	require.NoError(t, confirmed.Cancel("trip cancelled", now))
	assert.Equal(t, StateCancelled, confirmed.State)
}

func TestRejectOnlyFromPending(t *testing.T) {
	now := time.Now().UTC()

	pending := fixtureBooking(t)
	require.NoError(t, pending.Reject("fraud review", now))
	assert.Equal(t, StateRejected, pending.State)
	assert.True(t, pending.Terminal())

	confirmed := fixtureBooking(t)
	require.NoError(t, confirmed.Confirm("cs_1", now))
	assert.ErrorIs(t, confirmed.Reject("too late", now), ErrInvalidState)
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	now := time.Now().UTC()
	for _, terminalize := range []func(*Booking) error{
		func(b *Booking) error { return b.Cancel("done", now) },
		func(b *Booking) error { return b.Reject("done", now) },
	} {
		b := fixtureBooking(t)
		require.NoError(t, terminalize(b))
		assert.ErrorIs(t, b.Confirm("cs_x", now), ErrInvalidState)
		assert.ErrorIs(t, b.Cancel("again", now), ErrInvalidState)
		assert.ErrorIs(t, b.Reject("again", now), ErrInvalidState)
	}
}
