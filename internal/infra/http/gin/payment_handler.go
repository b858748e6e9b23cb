package ginserver

import (
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayloom/internal/app/commands"
	PaymentApp "stayloom/internal/app/handlers/payment"
	stripegw "stayloom/internal/infra/payments/stripe"
)

// PaymentWebhookHandler terminates processor webhooks. Every verified
// delivery is acknowledged with 200, including no-op re-deliveries and
// internal processing failures (logged and settled by reconciliation); only
// unreadable or unverifiable payloads are rejected so the processor retries
// them.
type PaymentWebhookHandler struct {
	Commands commands.Bus
	Parser   stripegw.WebhookParser
	Logger   *slog.Logger
}

func (h PaymentWebhookHandler) Webhook(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}
	notification, err := h.Parser.Parse(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if notification == nil {
		// Unrelated event type; acknowledge so the processor stops retrying.
		c.Status(http.StatusOK)
		return
	}

	outcome := PaymentApp.OutcomeFailed
	if notification.Succeeded {
		outcome = PaymentApp.OutcomeSucceeded
	}
	cmd := PaymentApp.PaymentEventCommand{
		PaymentReference: notification.PaymentReference,
		BookingID:        notification.BookingID,
		Outcome:          outcome,
	}
	result, err := commands.Dispatch[PaymentApp.PaymentEventCommand, *PaymentApp.PaymentEventResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		// Processing failures stay on our side: the processor cannot fix our
		// storage, so acknowledge and leave the booking pending for
		// reconciliation instead of triggering retries.
		if h.Logger != nil {
			h.Logger.Error("payment webhook processing failed, acknowledged for reconciliation",
				"booking_id", cmd.BookingID, "payment_reference", cmd.PaymentReference, "err", err)
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentWebhookHandler{}
