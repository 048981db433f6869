// File: handlers/slots.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	slotRepo "bookline/database/repository/slot"
	"bookline/models"
)

// SlotHandler manages slot configuration: hours, services, modes and
// blocked ranges.
type SlotHandler struct {
	Repo slotRepo.SlotRepository
}

// NewSlotHandler creates a new SlotHandler.
func NewSlotHandler(repo slotRepo.SlotRepository) *SlotHandler {
	return &SlotHandler{Repo: repo}
}

// UpsertSlotHandler creates or replaces a slot definition.
func (sh *SlotHandler) UpsertSlotHandler(c *gin.Context) {
	var slot models.Slot
	if err := c.ShouldBindJSON(&slot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot payload"})
		return
	}
	if slot.ProviderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "providerId is required"})
		return
	}
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if slot.Mode == "" {
		slot.Mode = models.SlotModeNormal
	}

	if err := sh.Repo.Upsert(c.Request.Context(), &slot); err != nil {
		zap.L().Error("Failed to upsert slot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save slot"})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// GetSlotHandler returns one slot by ID.
func (sh *SlotHandler) GetSlotHandler(c *gin.Context) {
	slot, err := sh.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// ListSlotsHandler returns all slots owned by a provider.
func (sh *SlotHandler) ListSlotsHandler(c *gin.Context) {
	providerID := c.Query("providerId")
	if providerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "providerId is required"})
		return
	}
	slots, err := sh.Repo.GetByProviderID(c.Request.Context(), providerID)
	if err != nil {
		zap.L().Error("Failed to list slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list slots"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetModeHandler switches a slot between normal, away and silent.
func (sh *SlotHandler) SetModeHandler(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mode payload"})
		return
	}
	switch req.Mode {
	case models.SlotModeNormal, models.SlotModeAway, models.SlotModeSilent:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown mode"})
		return
	}

	if err := sh.Repo.SetMode(c.Request.Context(), c.Param("id"), req.Mode); err != nil {
		zap.L().Error("Failed to set slot mode", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "mode": req.Mode})
}

// AddBlockedRangeHandler blocks part of a slot's calendar for a date.
func (sh *SlotHandler) AddBlockedRangeHandler(c *gin.Context) {
	var block models.BlockedRange
	if err := c.ShouldBindJSON(&block); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blocked range payload"})
		return
	}
	if _, ok := parseDate(block.Date); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	if block.StartMin < 0 || block.EndMin <= block.StartMin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time range"})
		return
	}
	block.SlotID = c.Param("id")
	if block.ID == "" {
		block.ID = uuid.New().String()
	}

	if err := sh.Repo.AddBlockedRange(c.Request.Context(), &block); err != nil {
		zap.L().Error("Failed to add blocked range", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add blocked range"})
		return
	}
	c.JSON(http.StatusOK, block)
}

// DeleteBlockedRangeHandler removes a blocked range.
func (sh *SlotHandler) DeleteBlockedRangeHandler(c *gin.Context) {
	if err := sh.Repo.DeleteBlockedRange(c.Request.Context(), c.Param("blockId")); err != nil {
		zap.L().Error("Failed to delete blocked range", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete blocked range"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListBlockedRangesHandler returns a slot's blocked ranges for one date.
func (sh *SlotHandler) ListBlockedRangesHandler(c *gin.Context) {
	date, ok := parseDate(c.Query("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	blocks, err := sh.Repo.GetBlockedRanges(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		zap.L().Error("Failed to list blocked ranges", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list blocked ranges"})
		return
	}
	c.JSON(http.StatusOK, blocks)
}
