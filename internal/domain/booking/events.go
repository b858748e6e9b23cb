package booking

import (
	"time"

	"stayloom/internal/domain/shared/daterange"
	"stayloom/internal/domain/shared/money"
	"stayloom/internal/domain/unit"
)

type ReservationRequested struct {
	BookingID   BookingID
	UnitID      unit.UnitID
	GuestID     string
	Range       daterange.DateRange
	GuestsCount int
	QuotedPrice money.Money
	At          time.Time
}

func (e ReservationRequested) EventName() string     { return "reservation.requested" }
func (e ReservationRequested) AggregateID() string   { return string(e.BookingID) }
func (e ReservationRequested) OccurredAt() time.Time { return e.At }

type ReservationConfirmed struct {
	BookingID BookingID
	UnitID    unit.UnitID
	Range     daterange.DateRange
	Total     money.Money
	At        time.Time
}

func (e ReservationConfirmed) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e ReservationConfirmed) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	BookingID BookingID
	UnitID    unit.UnitID
	Range     daterange.DateRange
	Reason    string
	At        time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.BookingID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type ReservationRejected struct {
	BookingID BookingID
	Reason    string
	At        time.Time
}

func (e ReservationRejected) EventName() string     { return "reservation.rejected" }
func (e ReservationRejected) AggregateID() string   { return string(e.BookingID) }
func (e ReservationRejected) OccurredAt() time.Time { return e.At }
