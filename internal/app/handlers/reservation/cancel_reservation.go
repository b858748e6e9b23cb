package reservation

import (
	"context"
	"time"

	"stayloom/internal/app/commands"
	"stayloom/internal/app/middleware"
	"stayloom/internal/app/outbox"
	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
)

const (
	cancelReservationKey = "reservation.cancel"
	rejectReservationKey = "reservation.reject"
)

type CancelReservationCommand struct {
	BookingID       string
	Reason          string
	IdempotencyKeyV string
}

func (c CancelReservationCommand) Key() string { return cancelReservationKey }

func (c CancelReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CancelReservationCommand) ResultPrototype() any { return &CancelReservationResult{} }

type CancelReservationResult struct {
	BookingID string `json:"booking_id"`
	State     string `json:"state"`
}

// CancelReservationHandler releases a pending or confirmed booking: the state
// transition and the removal of every owned occupancy row (stay and buffer)
// commit together or not at all.
type CancelReservationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CancelReservationHandler) Handle(ctx context.Context, cmd CancelReservationCommand) (*CancelReservationResult, error) {
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
		return nil, err
	}
	now := nowOr(h.Now)
	wasPending := booking.State == domainbooking.StatePending
	if err := booking.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}

	if err := releaseBooking(ctx, unit, booking, wasPending, now); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOr(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CancelReservationResult{BookingID: string(booking.ID), State: string(booking.State)}, nil
}

type RejectReservationCommand struct {
	BookingID       string
	Reason          string
	IdempotencyKeyV string
}

func (c RejectReservationCommand) Key() string { return rejectReservationKey }

func (c RejectReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RejectReservationCommand) ResultPrototype() any { return &CancelReservationResult{} }

// RejectReservationHandler declines a pending booking on administrative
// action. Rejected is terminal; dates are freed like a cancellation.
type RejectReservationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RejectReservationHandler) Handle(ctx context.Context, cmd RejectReservationCommand) (*CancelReservationResult, error) {
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
		return nil, err
	}
	now := nowOr(h.Now)
	if err := booking.Reject(cmd.Reason, now); err != nil {
		return nil, err
	}

	if err := releaseBooking(ctx, unit, booking, true, now); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOr(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CancelReservationResult{BookingID: string(booking.ID), State: string(booking.State)}, nil
}

// releaseBooking persists the state change, frees every occupancy row owned
// by the booking, and settles a still-pending payment ledger row.
func releaseBooking(ctx context.Context, unit uow.UnitOfWork, booking *domainbooking.Booking, failTransaction bool, now time.Time) error {
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return err
	}
	if err := unit.Occupancy().DeleteByBooking(ctx, string(booking.ID)); err != nil {
		return err
	}
	if !failTransaction {
		return nil
	}
	ledgerTx, err := unit.Transactions().ByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	if ledgerTx.Status == domainbooking.TransactionPending {
		ledgerTx.Fail(now)
		if err := unit.Transactions().Save(ctx, ledgerTx); err != nil {
			return err
		}
	}
	return nil
}

var _ commands.Handler[CancelReservationCommand, *CancelReservationResult] = (*CancelReservationHandler)(nil)
var _ commands.Handler[RejectReservationCommand, *CancelReservationResult] = (*RejectReservationHandler)(nil)
var _ middleware.IdempotentCommand = (*CancelReservationCommand)(nil)
var _ middleware.IdempotentCommand = (*RejectReservationCommand)(nil)
