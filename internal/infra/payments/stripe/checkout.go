package stripe

import (
	"context"
	"errors"
	"strings"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"stayloom/internal/app/policies"
	"stayloom/internal/domain/shared/money"
)

var ErrNotConfigured = errors.New("stripe: api key not configured")

// Gateway creates hosted checkout sessions. The session id doubles as the
// payment reference the webhook will later carry back.
type Gateway struct {
	SuccessURL string
	CancelURL  string
}

func NewGateway(apiKey, successURL, cancelURL string) (*Gateway, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	stripe.Key = apiKey
	return &Gateway{SuccessURL: successURL, CancelURL: cancelURL}, nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, bookingID string, amount money.Money, successURL, cancelURL string) (policies.CheckoutSession, error) {
	if successURL == "" {
		successURL = g.SuccessURL
	}
	if cancelURL == "" {
		cancelURL = g.CancelURL
	}
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(amount.Currency)),
					UnitAmount: stripe.Int64(amount.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Reservation " + bookingID),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{"booking_id": bookingID},
	}
	params.Context = ctx
	sess, err := session.New(params)
	if err != nil {
		return policies.CheckoutSession{}, err
	}
	return policies.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

var _ policies.PaymentsPort = (*Gateway)(nil)
