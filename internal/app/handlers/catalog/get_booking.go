package catalog

import (
	"context"

	"stayloom/internal/app/handlers/support"
	"stayloom/internal/app/queries"
	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	"stayloom/internal/domain/shared/daterange"
	"stayloom/internal/domain/shared/money"
)

const (
	getBookingKey        = "catalog.get_booking"
	listGuestBookingsKey = "catalog.list_guest_bookings"
)

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type BookingView struct {
	ID               string      `json:"id"`
	UnitID           string      `json:"unit_id"`
	GuestID          string      `json:"guest_id"`
	State            string      `json:"state"`
	CheckIn          string      `json:"check_in"`
	CheckOut         string      `json:"check_out"`
	Nights           int         `json:"nights"`
	Guests           int         `json:"guests"`
	Category         string      `json:"category"`
	Total            money.Money `json:"total"`
	PaymentReference string      `json:"payment_reference,omitempty"`
}

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*BookingView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	view := newBookingView(b)
	return &view, nil
}

func newBookingView(b *domainbooking.Booking) BookingView {
	return BookingView{
		ID:               string(b.ID),
		UnitID:           string(b.UnitID),
		GuestID:          b.GuestID,
		State:            string(b.State),
		CheckIn:          daterange.DayKey(b.Range.CheckIn),
		CheckOut:         daterange.DayKey(b.Range.CheckOut),
		Nights:           b.Range.Nights(),
		Guests:           b.Guests,
		Category:         string(b.Category),
		Total:            b.Price.Total,
		PaymentReference: b.PaymentReference,
	}
}

type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) ([]BookingView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(ctx, q.GuestID)
	if err != nil {
		return nil, err
	}
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, newBookingView(b))
	}
	return views, nil
}

var _ queries.Handler[GetBookingQuery, *BookingView] = (*GetBookingHandler)(nil)
var _ queries.Handler[ListGuestBookingsQuery, []BookingView] = (*ListGuestBookingsHandler)(nil)
