// File: handlers/availability.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	slotRepo "bookline/database/repository/slot"
	"bookline/services/availability"
	"bookline/services/booking"
)

// AvailabilityHandler exposes the calculator to the dashboard, computed
// with the same code path the conversation engine uses.
type AvailabilityHandler struct {
	Slots   slotRepo.SlotRepository
	Booking *booking.Manager
	Loc     *time.Location
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(slots slotRepo.SlotRepository, mgr *booking.Manager, loc *time.Location) *AvailabilityHandler {
	return &AvailabilityHandler{Slots: slots, Booking: mgr, Loc: loc}
}

// GetAvailabilityHandler returns the bookable start times for a slot/date.
func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	date, ok := parseDate(c.Query("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	slot, err := h.Slots.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}

	starts, err := h.Booking.CurrentAlternatives(c.Request.Context(), slot, date, time.Now().In(h.Loc))
	if err != nil {
		zap.L().Error("Failed to compute availability", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slotId": slot.ID,
		"date":   date,
		"starts": starts,
		"labels": availability.Labels(starts),
	})
}
