package ginserver

import (
	"context"
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayloom/internal/app/handlers/reservation"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	domainrange "stayloom/internal/domain/shared/daterange"
	domainunit "stayloom/internal/domain/unit"
)

// respondError maps domain errors onto HTTP statuses: malformed requests are
// 400, unknown resources 404, date collisions and state conflicts 409, and
// infrastructure trouble 503.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var validationErr *domainbooking.ValidationError
	var durationErr *domainbooking.DurationError
	var conflictErr *domainoccupancy.DateConflictError
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &durationErr),
		errors.Is(err, domainrange.ErrZeroBoundary),
		errors.Is(err, domainrange.ErrEmptyRange),
		errors.Is(err, domainrange.ErrTooManyNights),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrUnknownCategory),
		errors.Is(err, reservation.ErrCapacityExceeded):
		return http.StatusBadRequest
	// a unit closed for reservations is indistinguishable from an absent one
	case errors.Is(err, domainunit.ErrNotFound),
		errors.Is(err, domainunit.ErrUnavailable),
		errors.Is(err, domainbooking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflictErr),
		errors.Is(err, domainbooking.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
