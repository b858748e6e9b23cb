package catalog

import (
	"context"
	"time"

	"stayloom/internal/app/handlers/support"
	"stayloom/internal/app/queries"
	"stayloom/internal/app/uow"
	domainrange "stayloom/internal/domain/shared/daterange"
	domainunit "stayloom/internal/domain/unit"
)

const getCalendarKey = "catalog.get_calendar"

// GetCalendarQuery returns one month of availability for a unit.
type GetCalendarQuery struct {
	UnitID string
	Year   int
	Month  time.Month
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type CalendarDay struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Buffer    bool   `json:"buffer,omitempty"`
	Blocked   bool   `json:"blocked,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type CalendarView struct {
	UnitID string        `json:"unit_id"`
	Year   int           `json:"year"`
	Month  int           `json:"month"`
	Days   []CalendarDay `json:"days"`
}

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*CalendarView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if _, err := unit.Units().ByID(ctx, domainunit.UnitID(q.UnitID)); err != nil {
		return nil, err
	}

	from := time.Date(q.Year, q.Month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	statuses, err := unit.Occupancy().Calendar(ctx, domainunit.UnitID(q.UnitID), from, to)
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]CalendarDay, len(statuses))
	for _, st := range statuses {
		occupied[domainrange.DayKey(st.Date)] = CalendarDay{
			Date:    domainrange.DayKey(st.Date),
			Buffer:  st.Buffer,
			Blocked: st.Blocked,
			Reason:  st.Reason,
		}
	}

	view := &CalendarView{UnitID: q.UnitID, Year: q.Year, Month: int(q.Month)}
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := domainrange.DayKey(d)
		if day, ok := occupied[key]; ok {
			view.Days = append(view.Days, day)
			continue
		}
		view.Days = append(view.Days, CalendarDay{Date: key, Available: true})
	}
	return view, nil
}

var _ queries.Handler[GetCalendarQuery, *CalendarView] = (*GetCalendarHandler)(nil)
