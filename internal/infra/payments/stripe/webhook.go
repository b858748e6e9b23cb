package stripe

import (
	"encoding/json"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// PaymentNotification is the processor-agnostic shape of a webhook delivery.
type PaymentNotification struct {
	PaymentReference string
	BookingID        string
	Succeeded        bool
}

// WebhookParser verifies Stripe signatures and maps checkout session events
// to payment outcomes. Event types outside the checkout lifecycle yield
// (nil, nil) and should be acknowledged without action.
type WebhookParser struct {
	SigningSecret string
}

func (p WebhookParser) Parse(payload []byte, signatureHeader string) (*PaymentNotification, error) {
	var event stripe.Event
	if p.SigningSecret != "" {
		verified, err := webhook.ConstructEvent(payload, signatureHeader, p.SigningSecret)
		if err != nil {
			return nil, err
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return notificationFrom(event, true)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		return notificationFrom(event, false)
	default:
		return nil, nil
	}
}

func notificationFrom(event stripe.Event, succeeded bool) (*PaymentNotification, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, err
	}
	return &PaymentNotification{
		PaymentReference: sess.ID,
		BookingID:        sess.Metadata["booking_id"],
		Succeeded:        succeeded,
	}, nil
}
