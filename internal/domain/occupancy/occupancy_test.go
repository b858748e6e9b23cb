package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayloom/internal/domain/shared/daterange"
	"stayloom/internal/domain/unit"
)

func mustRange(t *testing.T, in, out time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	return dr
}

func TestStayEntriesOnePerNight(t *testing.T) {
	dr := mustRange(t,
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
	)
	entries := StayEntries(unit.UnitID("unit-1"), "bk-1", dr)

	require.Len(t, entries, 3)
	assert.Equal(t, "2026-03-01", daterange.DayKey(entries[0].Date))
	assert.Equal(t, "2026-03-03", daterange.DayKey(entries[2].Date))
	for _, e := range entries {
		assert.False(t, e.Buffer)
		assert.Equal(t, "bk-1", e.BookingID)
	}
}

func TestBufferEntriesSurroundTheStay(t *testing.T) {
	dr := mustRange(t,
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
	)
	entries := BufferEntries(unit.UnitID("unit-1"), "bk-1", dr, 1, 1)

	require.Len(t, entries, 2)
	assert.Equal(t, "2026-02-28", daterange.DayKey(entries[0].Date))
	assert.Equal(t, "2026-03-04", daterange.DayKey(entries[1].Date))
	for _, e := range entries {
		assert.True(t, e.Buffer)
	}
}

func TestBufferEntriesWiderWindow(t *testing.T) {
	dr := mustRange(t,
		time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
	)
	entries := BufferEntries(unit.UnitID("u"), "b", dr, 2, 2)

	require.Len(t, entries, 4)
	assert.Equal(t, "2026-03-08", daterange.DayKey(entries[0].Date))
	assert.Equal(t, "2026-03-09", daterange.DayKey(entries[1].Date))
	assert.Equal(t, "2026-03-12", daterange.DayKey(entries[2].Date))
	assert.Equal(t, "2026-03-13", daterange.DayKey(entries[3].Date))
}

func TestDateConflictErrorMessage(t *testing.T) {
	err := &DateConflictError{
		UnitID: unit.UnitID("unit-1"),
		Dates: []time.Time{
			time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	assert.Equal(t, "occupancy: dates unavailable for unit unit-1: 2026-03-02, 2026-03-03", err.Error())
}
