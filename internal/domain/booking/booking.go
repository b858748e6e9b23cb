package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayloom/internal/domain/pricing"
	"stayloom/internal/domain/shared/daterange"
	"stayloom/internal/domain/shared/events"
	"stayloom/internal/domain/unit"
)

var (
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCancelled BookingState = "CANCELLED"
	StateRejected  BookingState = "REJECTED"
)

// transitions is the only authority on lifecycle moves. Anything not listed
// here is rejected with ErrInvalidState.
var transitions = map[BookingState][]BookingState{
	StatePending:   {StateConfirmed, StateCancelled, StateRejected},
	StateConfirmed: {StateCancelled},
}

func canTransition(from, to BookingState) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Contact holds the requester's contact fields captured at creation.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Booking is a reservation for a contiguous date range on a single unit.
// Dates never change after creation; a date change is cancel + recreate.
type Booking struct {
	ID               BookingID
	UnitID           unit.UnitID
	GuestID          string
	Contact          Contact
	Range            daterange.DateRange
	Guests           int
	Category         Category
	Price            pricing.Breakdown
	State            BookingState
	PaymentReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByPaymentReference(ctx context.Context, ref string) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	UnitID    unit.UnitID
	GuestID   string
	Contact   Contact
	Range     daterange.DateRange
	Guests    int
	Category  Category
	Price     pricing.Breakdown
	CreatedAt time.Time
}

// ValidationError lists required fields missing from a reservation request.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "booking: missing required fields: " + strings.Join(e.Missing, ", ")
}

func (params CreateParams) validate() error {
	var missing []string
	if strings.TrimSpace(string(params.UnitID)) == "" {
		missing = append(missing, "unit_id")
	}
	if strings.TrimSpace(params.GuestID) == "" {
		missing = append(missing, "guest_id")
	}
	if strings.TrimSpace(params.Contact.Name) == "" {
		missing = append(missing, "contact_name")
	}
	if strings.TrimSpace(params.Contact.Email) == "" {
		missing = append(missing, "contact_email")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func NewBooking(params CreateParams) (*Booking, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if !params.Category.Valid() {
		return nil, ErrUnknownCategory
	}
	if params.Price.Total.Amount <= 0 {
		return nil, errors.New("booking: total must be positive")
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		UnitID:    params.UnitID,
		GuestID:   params.GuestID,
		Contact:   params.Contact,
		Range:     params.Range,
		Guests:    params.Guests,
		Category:  params.Category,
		Price:     params.Price,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(ReservationRequested{
		BookingID:   b.ID,
		UnitID:      b.UnitID,
		GuestID:     b.GuestID,
		Range:       b.Range,
		GuestsCount: b.Guests,
		QuotedPrice: b.Price.Total,
		At:          now,
	})
	return b, nil
}

// Confirm moves a pending booking to confirmed, recording the external
// payment reference.
func (b *Booking) Confirm(paymentReference string, now time.Time) error {
	if !canTransition(b.State, StateConfirmed) {
		return ErrInvalidState
	}
	b.PaymentReference = paymentReference
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(ReservationConfirmed{BookingID: b.ID, UnitID: b.UnitID, Range: b.Range, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

// Cancel releases a pending or confirmed booking.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if !canTransition(b.State, StateCancelled) {
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(ReservationCancelled{BookingID: b.ID, UnitID: b.UnitID, Range: b.Range, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Reject declines a pending booking; rejected is terminal.
func (b *Booking) Reject(reason string, now time.Time) error {
	if !canTransition(b.State, StateRejected) {
		return ErrInvalidState
	}
	b.State = StateRejected
	b.UpdatedAt = now.UTC()
	b.Record(ReservationRejected{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Terminal reports whether the booking reached a state with no exits.
func (b *Booking) Terminal() bool {
	return len(transitions[b.State]) == 0
}
