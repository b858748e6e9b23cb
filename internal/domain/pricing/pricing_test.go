package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayloom/internal/domain/shared/money"
)

func TestQuoteBaseAndExtraGuestFee(t *testing.T) {
	got, err := Quote(QuoteInput{
		NightlyRate:          money.Must(10000, "USD"),
		ExtraGuestNightlyFee: money.Must(2000, "USD"),
		Nights:               5,
		Guests:               2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(50000), got.Base.Amount)
	assert.Equal(t, int64(10000), got.ExtraGuestFee.Amount)
	assert.Equal(t, int64(60000), got.Subtotal.Amount)
	assert.True(t, got.Discount.IsZero())
	assert.Equal(t, int64(60000), got.Total.Amount)
}

func TestQuoteMembershipDiscount(t *testing.T) {
	got, err := Quote(QuoteInput{
		NightlyRate:          money.Must(10000, "USD"),
		ExtraGuestNightlyFee: money.Must(2000, "USD"),
		Nights:               5,
		Guests:               2,
		ActiveMembership:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6000), got.Discount.Amount)
	assert.Equal(t, int64(54000), got.Total.Amount)
}

func TestQuoteSingleGuestPaysNoExtraFee(t *testing.T) {
	got, err := Quote(QuoteInput{
		NightlyRate:          money.Must(15000, "USD"),
		ExtraGuestNightlyFee: money.Must(2500, "USD"),
		Nights:               3,
		Guests:               1,
	})
	require.NoError(t, err)
	assert.True(t, got.ExtraGuestFee.IsZero())
	assert.Equal(t, int64(45000), got.Total.Amount)
}

func TestQuoteDeterministic(t *testing.T) {
	in := QuoteInput{
		NightlyRate:          money.Must(12345, "EUR"),
		ExtraGuestNightlyFee: money.Must(678, "EUR"),
		Nights:               11,
		Guests:               3,
		ActiveMembership:     true,
	}
	first, err := Quote(in)
	require.NoError(t, err)
	second, err := Quote(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuoteValidation(t *testing.T) {
	_, err := Quote(QuoteInput{NightlyRate: money.Must(100, "USD"), Nights: 2, Guests: 0})
	assert.ErrorIs(t, err, ErrInvalidGuests)

	_, err = Quote(QuoteInput{NightlyRate: money.Must(100, "USD"), Nights: 0, Guests: 1})
	assert.ErrorIs(t, err, ErrNoNights)

	_, err = Quote(QuoteInput{NightlyRate: money.Money{Amount: 100}, Nights: 2, Guests: 1})
	assert.ErrorIs(t, err, ErrCurrencyUnset)
}
