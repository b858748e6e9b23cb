package ginserver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"stayloom/internal/app/handlers/reservation"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	domainunit "stayloom/internal/domain/unit"
)

func TestStatusForErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &domainbooking.ValidationError{Missing: []string{"unit_id"}}, http.StatusBadRequest},
		{"duration", &domainbooking.DurationError{Nights: 29, Min: 30, Max: 180}, http.StatusBadRequest},
		{"past check-in", domainbooking.ErrCheckInInPast, http.StatusBadRequest},
		{"capacity", reservation.ErrCapacityExceeded, http.StatusBadRequest},
		{"unit missing", domainunit.ErrNotFound, http.StatusNotFound},
		{"unit closed", domainunit.ErrUnavailable, http.StatusNotFound},
		{"booking missing", domainbooking.ErrBookingNotFound, http.StatusNotFound},
		{"dates taken", &domainoccupancy.DateConflictError{UnitID: "unit-1"}, http.StatusConflict},
		{"state machine", domainbooking.ErrInvalidState, http.StatusConflict},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, statusFor(tc.err), tc.name)
	}
}
