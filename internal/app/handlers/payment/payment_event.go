package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayloom/internal/app/commands"
	"stayloom/internal/app/middleware"
	"stayloom/internal/app/outbox"
	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
)

const paymentEventKey = "payment.event"

var ErrUnitOfWorkRequired = errors.New("payment: unit of work required")

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// PaymentEventCommand carries one asynchronous payment outcome. Delivery is
// at-least-once; the idempotency key (payment reference + booking id) makes
// re-deliveries no-ops.
type PaymentEventCommand struct {
	PaymentReference string
	BookingID        string
	Outcome          Outcome
}

func (c PaymentEventCommand) Key() string { return paymentEventKey }

func (c PaymentEventCommand) IdempotencyKey() string {
	if c.PaymentReference == "" || c.BookingID == "" {
		return ""
	}
	return c.PaymentReference + ":" + c.BookingID
}

func (c PaymentEventCommand) ResultPrototype() any { return &PaymentEventResult{} }

type PaymentEventResult struct {
	BookingID string `json:"booking_id"`
	State     string `json:"state"`
	Applied   bool   `json:"applied"`
}

// PaymentEventHandler drives the booking state machine from payment
// outcomes. Events referencing unknown or already-terminal bookings are
// logged and swallowed; the processor cannot act on our errors.
type PaymentEventHandler struct {
	UoWFactory   uow.UoWFactory
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	BufferBefore int
	BufferAfter  int
	Logger       *slog.Logger
	Now          func() time.Time
}

func (h *PaymentEventHandler) Handle(ctx context.Context, cmd PaymentEventCommand) (*PaymentEventResult, error) {
	unit, ctx, managed, err := beginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			h.logger().Info("payment event for unknown booking, ignoring",
				"booking_id", cmd.BookingID, "payment_reference", cmd.PaymentReference)
			return &PaymentEventResult{BookingID: cmd.BookingID, Applied: false}, nil
		}
		return nil, err
	}
	if booking.State != domainbooking.StatePending {
		h.logger().Info("payment event for settled booking, ignoring",
			"booking_id", cmd.BookingID, "state", string(booking.State))
		return &PaymentEventResult{BookingID: cmd.BookingID, State: string(booking.State), Applied: false}, nil
	}

	now := h.now()
	switch cmd.Outcome {
	case OutcomeSucceeded:
		err = h.applySucceeded(ctx, unit, booking, cmd.PaymentReference, now)
	case OutcomeFailed:
		err = h.applyFailed(ctx, unit, booking, now)
	default:
		h.logger().Warn("payment event with unknown outcome, ignoring",
			"booking_id", cmd.BookingID, "outcome", string(cmd.Outcome))
		return &PaymentEventResult{BookingID: cmd.BookingID, State: string(booking.State), Applied: false}, nil
	}
	if err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &PaymentEventResult{BookingID: string(booking.ID), State: string(booking.State), Applied: true}, nil
}

func (h *PaymentEventHandler) applySucceeded(ctx context.Context, unit uow.UnitOfWork, booking *domainbooking.Booking, paymentRef string, now time.Time) error {
	if err := booking.Confirm(paymentRef, now); err != nil {
		return err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return err
	}

	// Buffer days tolerate per-date omission: a neighbour's stay or buffer
	// on an adjacent day must not fail the confirmation. The stay nights
	// themselves were locked exclusively at creation time.
	buffers := domainoccupancy.BufferEntries(booking.UnitID, string(booking.ID), booking.Range, h.bufferBefore(), h.bufferAfter())
	if len(buffers) > 0 {
		inserted, err := unit.Occupancy().InsertEntriesTolerant(ctx, buffers)
		if err != nil {
			return err
		}
		if len(inserted) < len(buffers) {
			h.logger().Info("some buffer days skipped",
				"booking_id", string(booking.ID), "requested", len(buffers), "inserted", len(inserted))
		}
	}

	ledgerTx, err := unit.Transactions().ByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	ledgerTx.Complete(now)
	return unit.Transactions().Save(ctx, ledgerTx)
}

func (h *PaymentEventHandler) applyFailed(ctx context.Context, unit uow.UnitOfWork, booking *domainbooking.Booking, now time.Time) error {
	if err := booking.Cancel("payment failed", now); err != nil {
		return err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return err
	}
	if err := unit.Occupancy().DeleteByBooking(ctx, string(booking.ID)); err != nil {
		return err
	}
	ledgerTx, err := unit.Transactions().ByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	ledgerTx.Fail(now)
	return unit.Transactions().Save(ctx, ledgerTx)
}

func (h *PaymentEventHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *PaymentEventHandler) bufferBefore() int {
	if h.BufferBefore < 0 {
		return 0
	}
	return h.BufferBefore
}

func (h *PaymentEventHandler) bufferAfter() int {
	if h.BufferAfter < 0 {
		return 0
	}
	return h.BufferAfter
}

func (h *PaymentEventHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *PaymentEventHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[PaymentEventCommand, *PaymentEventResult] = (*PaymentEventHandler)(nil)
var _ middleware.IdempotentCommand = (*PaymentEventCommand)(nil)
