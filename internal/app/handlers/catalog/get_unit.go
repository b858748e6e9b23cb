package catalog

import (
	"context"

	"stayloom/internal/app/handlers/support"
	"stayloom/internal/app/queries"
	"stayloom/internal/app/uow"
	"stayloom/internal/domain/shared/money"
	domainunit "stayloom/internal/domain/unit"
)

const getUnitKey = "catalog.get_unit"

type GetUnitQuery struct {
	UnitID string
}

func (q GetUnitQuery) Key() string { return getUnitKey }

type UnitView struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	NightlyRate          money.Money `json:"nightly_rate"`
	ExtraGuestNightlyFee money.Money `json:"extra_guest_nightly_fee"`
	MaxGuests            int         `json:"max_guests"`
	Available            bool        `json:"available"`
}

type GetUnitHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetUnitHandler) Handle(ctx context.Context, q GetUnitQuery) (*UnitView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	u, err := unit.Units().ByID(ctx, domainunit.UnitID(q.UnitID))
	if err != nil {
		return nil, err
	}
	view := newUnitView(u)
	return &view, nil
}

func newUnitView(u *domainunit.Unit) UnitView {
	return UnitView{
		ID:                   string(u.ID),
		Name:                 u.Name,
		NightlyRate:          u.NightlyRate,
		ExtraGuestNightlyFee: u.ExtraGuestNightlyFee,
		MaxGuests:            u.MaxGuests,
		Available:            u.Available,
	}
}

const listUnitsKey = "catalog.list_units"

type ListUnitsQuery struct{}

func (q ListUnitsQuery) Key() string { return listUnitsKey }

type ListUnitsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUnitsHandler) Handle(ctx context.Context, q ListUnitsQuery) ([]UnitView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	units, err := unit.Units().List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]UnitView, 0, len(units))
	for _, u := range units {
		views = append(views, newUnitView(u))
	}
	return views, nil
}

var _ queries.Handler[GetUnitQuery, *UnitView] = (*GetUnitHandler)(nil)
var _ queries.Handler[ListUnitsQuery, []UnitView] = (*ListUnitsHandler)(nil)
