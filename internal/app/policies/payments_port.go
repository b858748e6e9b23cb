package policies

import (
	"context"

	"stayloom/internal/domain/shared/money"
)

// CheckoutSession is the external processor's handle for collecting payment.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentsPort abstracts the external payment processor. The engine only
// creates checkout sessions; outcomes arrive asynchronously via webhook.
type PaymentsPort interface {
	CreateCheckoutSession(ctx context.Context, bookingID string, amount money.Money, successURL, cancelURL string) (CheckoutSession, error)
}
