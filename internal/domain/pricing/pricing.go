package pricing

import (
	"errors"

	"stayloom/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
	ErrNoNights          = errors.New("pricing: nights must be positive")
	ErrNegativeComponent = errors.New("pricing: components cannot be negative unless modeled as discount")
	ErrInvalidGuests     = errors.New("pricing: guest count must be positive")
)

// MembershipDiscountPercent is the flat discount applied to the subtotal when
// the requester holds an active membership at booking-creation time. The flag
// is a snapshot: a membership that lapses or activates later never changes an
// existing booking's price.
const MembershipDiscountPercent = 10

// Breakdown itemizes a quoted reservation price.
type Breakdown struct {
	Nights        int         `json:"nights" bson:"nights"`
	Nightly       money.Money `json:"nightly" bson:"nightly"`
	Base          money.Money `json:"base" bson:"base"`
	ExtraGuestFee money.Money `json:"extra_guest_fee" bson:"extra_guest_fee"`
	Subtotal      money.Money `json:"subtotal" bson:"subtotal"`
	Discount      money.Money `json:"discount" bson:"discount"`
	Total         money.Money `json:"total" bson:"total"`
}

func (b *Breakdown) Validate() error {
	if b.Nightly.Currency == "" {
		return ErrCurrencyUnset
	}
	if b.Nights <= 0 {
		return ErrNoNights
	}
	if b.ExtraGuestFee.Amount < 0 || b.Base.Amount < 0 {
		return ErrNegativeComponent
	}
	return nil
}

// QuoteInput carries everything the calculator needs; it performs no I/O.
type QuoteInput struct {
	NightlyRate          money.Money
	ExtraGuestNightlyFee money.Money
	Nights               int
	Guests               int
	ActiveMembership     bool
}

// Quote computes the reservation price: base = rate * nights, extra-guest fee
// charged per additional guest per night, and a membership discount off the
// subtotal. Pure function, deterministic for identical inputs.
func Quote(in QuoteInput) (Breakdown, error) {
	if in.Guests <= 0 {
		return Breakdown{}, ErrInvalidGuests
	}
	b := Breakdown{
		Nights:  in.Nights,
		Nightly: in.NightlyRate,
	}
	if err := b.Validate(); err != nil {
		return Breakdown{}, err
	}

	b.Base = in.NightlyRate.Multiply(int64(in.Nights))

	extraGuests := int64(in.Guests - 1)
	fee := in.ExtraGuestNightlyFee
	if fee.Currency == "" {
		fee = money.Money{Amount: 0, Currency: in.NightlyRate.Currency}
	}
	b.ExtraGuestFee = fee.Multiply(extraGuests * int64(in.Nights))

	subtotal, err := b.Base.Add(b.ExtraGuestFee)
	if err != nil {
		return Breakdown{}, err
	}
	b.Subtotal = subtotal

	b.Discount = money.Money{Amount: 0, Currency: subtotal.Currency}
	if in.ActiveMembership {
		b.Discount = subtotal.Percent(MembershipDiscountPercent)
	}

	total, err := b.Subtotal.Sub(b.Discount)
	if err != nil {
		return Breakdown{}, err
	}
	b.Total = total
	return b, nil
}
