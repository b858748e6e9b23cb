package reservation

import (
	"context"
	"time"

	"stayloom/internal/app/commands"
	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	domainrange "stayloom/internal/domain/shared/daterange"
	domainunit "stayloom/internal/domain/unit"
)

const (
	blockDatesKey   = "occupancy.block"
	unblockDatesKey = "occupancy.unblock"
)

// BlockDatesCommand places administrator blocks. Blocked days live in the
// same uniqueness space as booked days, so the reservation path needs no
// special handling for them.
type BlockDatesCommand struct {
	UnitID string
	Dates  []time.Time
	Reason string
}

func (c BlockDatesCommand) Key() string { return blockDatesKey }

func (c BlockDatesCommand) Validate() error {
	var missing []string
	if c.UnitID == "" {
		missing = append(missing, "unit_id")
	}
	if len(c.Dates) == 0 {
		missing = append(missing, "dates")
	}
	if len(missing) > 0 {
		return &domainbooking.ValidationError{Missing: missing}
	}
	return nil
}

type BlockDatesResult struct {
	UnitID  string   `json:"unit_id"`
	Blocked []string `json:"blocked"`
}

type BlockDatesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (*BlockDatesResult, error) {
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

	if _, err := unit.Units().ByID(ctx, domainunit.UnitID(cmd.UnitID)); err != nil {
		return nil, err
	}

	blocks := make([]domainoccupancy.Block, 0, len(cmd.Dates))
	keys := make([]string, 0, len(cmd.Dates))
	for _, d := range cmd.Dates {
		day := domainrange.Day(d)
		blocks = append(blocks, domainoccupancy.Block{
			UnitID: domainunit.UnitID(cmd.UnitID),
			Date:   day,
			Reason: cmd.Reason,
		})
		keys = append(keys, domainrange.DayKey(day))
	}
	if err := unit.Occupancy().InsertBlocks(ctx, blocks); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &BlockDatesResult{UnitID: cmd.UnitID, Blocked: keys}, nil
}

type UnblockDatesCommand struct {
	UnitID string
	Dates  []time.Time
}

func (c UnblockDatesCommand) Key() string { return unblockDatesKey }

func (c UnblockDatesCommand) Validate() error {
	var missing []string
	if c.UnitID == "" {
		missing = append(missing, "unit_id")
	}
	if len(c.Dates) == 0 {
		missing = append(missing, "dates")
	}
	if len(missing) > 0 {
		return &domainbooking.ValidationError{Missing: missing}
	}
	return nil
}

type UnblockDatesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *UnblockDatesHandler) Handle(ctx context.Context, cmd UnblockDatesCommand) (*BlockDatesResult, error) {
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

	days := make([]time.Time, 0, len(cmd.Dates))
	keys := make([]string, 0, len(cmd.Dates))
	for _, d := range cmd.Dates {
		day := domainrange.Day(d)
		days = append(days, day)
		keys = append(keys, domainrange.DayKey(day))
	}
	if err := unit.Occupancy().DeleteBlocks(ctx, domainunit.UnitID(cmd.UnitID), days); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &BlockDatesResult{UnitID: cmd.UnitID, Blocked: keys}, nil
}

var _ commands.Handler[BlockDatesCommand, *BlockDatesResult] = (*BlockDatesHandler)(nil)
var _ commands.Handler[UnblockDatesCommand, *BlockDatesResult] = (*UnblockDatesHandler)(nil)
