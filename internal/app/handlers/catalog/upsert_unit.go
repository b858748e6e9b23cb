package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"stayloom/internal/app/commands"
	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	"stayloom/internal/domain/shared/money"
	domainunit "stayloom/internal/domain/unit"
)

const upsertUnitKey = "catalog.upsert_unit"

// UpsertUnitCommand creates or updates a rentable unit. New units get a
// generated id when none is supplied.
type UpsertUnitCommand struct {
	UnitID               string
	Name                 string
	NightlyRate          money.Money
	ExtraGuestNightlyFee money.Money
	MaxGuests            int
	Available            bool
}

func (c UpsertUnitCommand) Key() string { return upsertUnitKey }

func (c UpsertUnitCommand) Validate() error {
	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.NightlyRate.Amount <= 0 {
		missing = append(missing, "nightly_rate")
	}
	if c.MaxGuests <= 0 {
		missing = append(missing, "max_guests")
	}
	if len(missing) > 0 {
		return &domainbooking.ValidationError{Missing: missing}
	}
	return nil
}

type UpsertUnitHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *UpsertUnitHandler) Handle(ctx context.Context, cmd UpsertUnitCommand) (*UnitView, error) {
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

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}

	var u *domainunit.Unit
	if cmd.UnitID != "" {
		existing, err := unit.Units().ByID(ctx, domainunit.UnitID(cmd.UnitID))
		switch {
		case err == nil:
			existing.Name = cmd.Name
			existing.NightlyRate = cmd.NightlyRate
			existing.ExtraGuestNightlyFee = cmd.ExtraGuestNightlyFee
			existing.MaxGuests = cmd.MaxGuests
			existing.Available = cmd.Available
			existing.UpdatedAt = now
			u = existing
		case errors.Is(err, domainunit.ErrNotFound):
			u = nil
		default:
			return nil, err
		}
	}
	if u == nil {
		id := cmd.UnitID
		if id == "" {
			id = uuid.NewString()
		}
		created, err := domainunit.NewUnit(domainunit.CreateParams{
			ID:                   domainunit.UnitID(id),
			Name:                 cmd.Name,
			NightlyRate:          cmd.NightlyRate,
			ExtraGuestNightlyFee: cmd.ExtraGuestNightlyFee,
			MaxGuests:            cmd.MaxGuests,
			Available:            cmd.Available,
			Now:                  now,
		})
		if err != nil {
			return nil, err
		}
		u = created
	}

	if err := unit.Units().Save(ctx, u); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	view := newUnitView(u)
	return &view, nil
}

var _ commands.Handler[UpsertUnitCommand, *UnitView] = (*UpsertUnitHandler)(nil)
