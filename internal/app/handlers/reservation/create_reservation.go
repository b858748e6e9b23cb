package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayloom/internal/app/commands"
	"stayloom/internal/app/middleware"
	"stayloom/internal/app/outbox"
	"stayloom/internal/app/policies"
	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	"stayloom/internal/domain/pricing"
	domainrange "stayloom/internal/domain/shared/daterange"
	domainunit "stayloom/internal/domain/unit"
)

const createReservationKey = "reservation.create"

var (
	ErrUnitOfWorkRequired = errors.New("reservation: unit of work required")
	ErrCapacityExceeded   = errors.New("reservation: guest count exceeds unit capacity")
)

type CreateReservationCommand struct {
	CommandID        string
	UnitID           string
	GuestID          string
	ContactName      string
	ContactEmail     string
	ContactPhone     string
	CheckIn          time.Time
	CheckOut         time.Time
	Guests           int
	Category         string
	ActiveMembership bool
	IdempotencyKeyV  string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateReservationCommand) ResultPrototype() any { return &CreateReservationResult{} }

// Validate lists every missing required field in one error so clients can fix
// the whole request at once.
func (c CreateReservationCommand) Validate() error {
	var missing []string
	if strings.TrimSpace(c.UnitID) == "" {
		missing = append(missing, "unit_id")
	}
	if c.CheckIn.IsZero() {
		missing = append(missing, "check_in")
	}
	if c.CheckOut.IsZero() {
		missing = append(missing, "check_out")
	}
	if strings.TrimSpace(c.GuestID) == "" {
		missing = append(missing, "guest_id")
	}
	if strings.TrimSpace(c.ContactName) == "" {
		missing = append(missing, "contact_name")
	}
	if strings.TrimSpace(c.ContactEmail) == "" {
		missing = append(missing, "contact_email")
	}
	if len(missing) > 0 {
		return &domainbooking.ValidationError{Missing: missing}
	}
	return nil
}

type CreateReservationResult struct {
	BookingID   string            `json:"booking_id"`
	Price       pricing.Breakdown `json:"price"`
	CheckoutURL string            `json:"checkout_url"`
}

type CreateReservationHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	SuccessURL string
	CancelURL  string
	Now        func() time.Time
}

func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (*CreateReservationResult, error) {
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

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	category := domainbooking.Category(cmd.Category)
	if cmd.Category == "" {
		category = domainbooking.CategoryStandard
	}
	if err := domainbooking.ValidateDuration(category, dr); err != nil {
		return nil, err
	}

	bookable, err := unit.Units().ByID(ctx, domainunit.UnitID(cmd.UnitID))
	if err != nil {
		return nil, err
	}
	if !bookable.Reservable() {
		return nil, domainunit.ErrUnavailable
	}
	if cmd.Guests > bookable.MaxGuests {
		return nil, ErrCapacityExceeded
	}

	// Advisory read for a precise early error; the unique index behind
	// InsertEntries below remains the authority.
	stayDays := dr.Days()
	conflicts, err := unit.Occupancy().ConflictingDates(ctx, bookable.ID, stayDays)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &domainoccupancy.DateConflictError{UnitID: bookable.ID, Dates: conflicts}
	}

	price, err := pricing.Quote(pricing.QuoteInput{
		NightlyRate:          bookable.NightlyRate,
		ExtraGuestNightlyFee: bookable.ExtraGuestNightlyFee,
		Nights:               dr.Nights(),
		Guests:               cmd.Guests,
		ActiveMembership:     cmd.ActiveMembership,
	})
	if err != nil {
		return nil, err
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:      domainbooking.BookingID(cmd.CommandID),
		UnitID:  bookable.ID,
		GuestID: cmd.GuestID,
		Contact: domainbooking.Contact{
			Name:  cmd.ContactName,
			Email: cmd.ContactEmail,
			Phone: cmd.ContactPhone,
		},
		Range:     dr,
		Guests:    cmd.Guests,
		Category:  category,
		Price:     price,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	// All-or-nothing allocation: one entry per stay night, or a conflict
	// error and zero rows.
	entries := domainoccupancy.StayEntries(bookable.ID, string(booking.ID), dr)
	if err := unit.Occupancy().InsertEntries(ctx, entries); err != nil {
		return nil, err
	}

	ledgerTx := domainbooking.NewTransaction(uuid.NewString(), booking.ID, price.Total, now)
	if err := unit.Transactions().Save(ctx, ledgerTx); err != nil {
		return nil, err
	}

	session, err := h.Payments.CreateCheckoutSession(ctx, string(booking.ID), price.Total, h.SuccessURL, h.CancelURL)
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

	return &CreateReservationResult{
		BookingID:   string(booking.ID),
		Price:       price,
		CheckoutURL: session.URL,
	}, nil
}

func (h *CreateReservationHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateReservationHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CreateReservationCommand, *CreateReservationResult] = (*CreateReservationHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateReservationCommand)(nil)
var _ middleware.ValidatableCommand = (*CreateReservationCommand)(nil)
