package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayloom/internal/app/commands"
	"stayloom/internal/app/handlers/catalog"
	ReservationApp "stayloom/internal/app/handlers/reservation"
	"stayloom/internal/domain/shared/money"
)

type AdminHandler struct {
	Commands commands.Bus
}

type upsertUnitRequest struct {
	UnitID               string      `json:"unit_id"`
	Name                 string      `json:"name"`
	NightlyRate          money.Money `json:"nightly_rate"`
	ExtraGuestNightlyFee money.Money `json:"extra_guest_nightly_fee"`
	MaxGuests            int         `json:"max_guests"`
	Available            bool        `json:"available"`
}

func (h AdminHandler) UpsertUnit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req upsertUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := catalog.UpsertUnitCommand{
		UnitID:               req.UnitID,
		Name:                 req.Name,
		NightlyRate:          req.NightlyRate,
		ExtraGuestNightlyFee: req.ExtraGuestNightlyFee,
		MaxGuests:            req.MaxGuests,
		Available:            req.Available,
	}
	result, err := commands.Dispatch[catalog.UpsertUnitCommand, *catalog.UnitView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type blockDatesRequest struct {
	Dates  []time.Time `json:"dates"`
	Reason string      `json:"reason"`
}

func (h AdminHandler) BlockDates(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ReservationApp.BlockDatesCommand{
		UnitID: c.Param("id"),
		Dates:  req.Dates,
		Reason: req.Reason,
	}
	result, err := commands.Dispatch[ReservationApp.BlockDatesCommand, *ReservationApp.BlockDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) UnblockDates(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ReservationApp.UnblockDatesCommand{
		UnitID: c.Param("id"),
		Dates:  req.Dates,
	}
	result, err := commands.Dispatch[ReservationApp.UnblockDatesCommand, *ReservationApp.BlockDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type rejectReservationRequest struct {
	Reason string `json:"reason"`
}

func (h AdminHandler) RejectReservation(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req rejectReservationRequest
	_ = c.ShouldBindJSON(&req)
	cmd := ReservationApp.RejectReservationCommand{
		BookingID:       c.Param("id"),
		Reason:          req.Reason,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[ReservationApp.RejectReservationCommand, *ReservationApp.CancelReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
