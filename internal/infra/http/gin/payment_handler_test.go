package ginserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stayloom/internal/app/commands"
	PaymentApp "stayloom/internal/app/handlers/payment"
	stripegw "stayloom/internal/infra/payments/stripe"
)

type stubCommandBus struct {
	result any
	err    error
	calls  int
}

func (b *stubCommandBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.result, nil
}

const completedSessionEvent = `{"type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"booking_id":"bk-1"}}}}`

func postWebhook(handler PaymentWebhookHandler, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
	handler.Webhook(c)
	return w
}

func TestWebhookReturnsResultOnSuccess(t *testing.T) {
	bus := &stubCommandBus{result: &PaymentApp.PaymentEventResult{BookingID: "bk-1", State: "confirmed", Applied: true}}
	handler := PaymentWebhookHandler{Commands: bus, Parser: stripegw.WebhookParser{}}

	w := postWebhook(handler, completedSessionEvent)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, bus.calls)
	assert.Contains(t, w.Body.String(), "bk-1")
}

func TestWebhookAcknowledgesProcessingFailure(t *testing.T) {
	bus := &stubCommandBus{err: errors.New("storage offline")}
	handler := PaymentWebhookHandler{Commands: bus, Parser: stripegw.WebhookParser{}}

	w := postWebhook(handler, completedSessionEvent)

	// our failure, not the processor's: acknowledge and reconcile later
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, bus.calls)
}

func TestWebhookAcksUnrelatedEventTypes(t *testing.T) {
	bus := &stubCommandBus{}
	handler := PaymentWebhookHandler{Commands: bus, Parser: stripegw.WebhookParser{}}

	w := postWebhook(handler, `{"type":"invoice.paid","data":{"object":{}}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, bus.calls)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	bus := &stubCommandBus{}
	handler := PaymentWebhookHandler{Commands: bus, Parser: stripegw.WebhookParser{}}

	w := postWebhook(handler, "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, bus.calls)
}
