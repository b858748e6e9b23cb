package memory

import (
	"context"

	"github.com/google/uuid"

	"stayloom/internal/app/policies"
	"stayloom/internal/domain/shared/money"
)

// Payments is a stand-in processor for the memory storage mode: every
// checkout session is created instantly with a synthetic reference.
type Payments struct {
	BaseURL string
}

func (p Payments) CreateCheckoutSession(ctx context.Context, bookingID string, amount money.Money, successURL, cancelURL string) (policies.CheckoutSession, error) {
	id := "cs_local_" + uuid.NewString()
	base := p.BaseURL
	if base == "" {
		base = "http://localhost:8080/checkout/"
	}
	return policies.CheckoutSession{ID: id, URL: base + id}, nil
}

var _ policies.PaymentsPort = Payments{}
