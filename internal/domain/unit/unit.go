package unit

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayloom/internal/domain/shared/money"
)

var (
	ErrNotFound    = errors.New("unit: not found")
	ErrUnavailable = errors.New("unit: not open for reservations")
	ErrInvalidRate = errors.New("unit: nightly rate must be positive")
)

type UnitID string

// Unit is a reservable room or space. The reservation path treats it as
// read-only; administrative edits go through UpsertUnit.
type Unit struct {
	ID                   UnitID
	Name                 string
	NightlyRate          money.Money
	ExtraGuestNightlyFee money.Money
	MaxGuests            int
	Available            bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Repository interface {
	ByID(ctx context.Context, id UnitID) (*Unit, error)
	Save(ctx context.Context, u *Unit) error
	List(ctx context.Context) ([]*Unit, error)
}

type CreateParams struct {
	ID                   UnitID
	Name                 string
	NightlyRate          money.Money
	ExtraGuestNightlyFee money.Money
	MaxGuests            int
	Available            bool
	Now                  time.Time
}

func NewUnit(params CreateParams) (*Unit, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("unit: id required")
	}
	if params.NightlyRate.Amount <= 0 || params.NightlyRate.Currency == "" {
		return nil, ErrInvalidRate
	}
	if params.MaxGuests <= 0 {
		return nil, errors.New("unit: max guests must be positive")
	}
	fee := params.ExtraGuestNightlyFee
	if fee.Currency == "" {
		fee = money.Money{Amount: 0, Currency: params.NightlyRate.Currency}
	}
	now := params.Now.UTC()
	return &Unit{
		ID:                   params.ID,
		Name:                 params.Name,
		NightlyRate:          params.NightlyRate,
		ExtraGuestNightlyFee: fee,
		MaxGuests:            params.MaxGuests,
		Available:            params.Available,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Reservable reports whether the unit can accept new reservations.
func (u *Unit) Reservable() bool {
	return u != nil && u.Available
}
