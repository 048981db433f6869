// File: handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appointmentRepo "bookline/database/repository/appointment"
	reliabilityRepo "bookline/database/repository/reliability"
	"bookline/models"
	"bookline/services/conversation"
	"bookline/services/guard"
	"bookline/services/messenger"
	"bookline/services/session"
)

// AdminHandler encapsulates the dashboard-facing operations: appointment
// lifecycle, no-show reporting and blacklist management.
type AdminHandler struct {
	Appointments appointmentRepo.AppointmentRepository
	Reliability  reliabilityRepo.ReliabilityRepository
	Guard        *guard.Guard
	Sessions     *session.Store
	Messenger    messenger.Messenger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	appointments appointmentRepo.AppointmentRepository,
	reliability reliabilityRepo.ReliabilityRepository,
	g *guard.Guard,
	sessions *session.Store,
	msgr messenger.Messenger,
) *AdminHandler {
	return &AdminHandler{
		Appointments: appointments,
		Reliability:  reliability,
		Guard:        g,
		Sessions:     sessions,
		Messenger:    msgr,
	}
}

// ListAppointmentsHandler returns a provider's appointments, newest first.
func (ah *AdminHandler) ListAppointmentsHandler(c *gin.Context) {
	providerID := c.Query("providerId")
	if providerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "providerId is required"})
		return
	}
	limit := int64(100)
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}

	appts, err := ah.Appointments.ListByProvider(c.Request.Context(), providerID, limit)
	if err != nil {
		zap.L().Error("Failed to list appointments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list appointments"})
		return
	}
	c.JSON(http.StatusOK, appts)
}

// CancelAppointmentHandler cancels an appointment on the provider's behalf.
func (ah *AdminHandler) CancelAppointmentHandler(c *gin.Context) {
	ah.updateStatus(c, models.AppointmentCancelled)
}

// CompleteAppointmentHandler marks an appointment as completed.
func (ah *AdminHandler) CompleteAppointmentHandler(c *gin.Context) {
	ah.updateStatus(c, models.AppointmentCompleted)
}

func (ah *AdminHandler) updateStatus(c *gin.Context, status string) {
	apptID := c.Param("id")
	appt, err := ah.Appointments.GetByID(c.Request.Context(), apptID)
	if err != nil {
		zap.L().Error("Failed to fetch appointment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointment"})
		return
	}
	if appt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	if err := ah.Appointments.UpdateStatus(c.Request.Context(), apptID, status); err != nil {
		zap.L().Error("Failed to update appointment status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update appointment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": apptID, "status": status})
}

// ReportNoShowHandler marks the appointment as a no-show, bumps the
// phone's reliability counter and notifies the client: a warning below the
// block threshold, a terminal notice once the shared blacklist kicks in.
func (ah *AdminHandler) ReportNoShowHandler(c *gin.Context) {
	ctx := c.Request.Context()
	apptID := c.Param("id")

	appt, err := ah.Appointments.GetByID(ctx, apptID)
	if err != nil {
		zap.L().Error("Failed to fetch appointment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointment"})
		return
	}
	if appt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	if err := ah.Appointments.UpdateStatus(ctx, apptID, models.AppointmentNoShow); err != nil {
		zap.L().Error("Failed to mark no-show", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark no-show"})
		return
	}

	outcome, err := ah.Guard.IncrementNoShow(ctx, appt.Phone, appt.ProviderID)
	if err != nil {
		zap.L().Error("Failed to record no-show", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record no-show"})
		return
	}

	lang := "en"
	if sess, err := ah.Sessions.Load(ctx, appt.ProviderID, appt.SlotID, appt.Phone); err == nil && sess.Language != "" {
		lang = sess.Language
	}
	if err := ah.Messenger.SendText(ctx, appt.Phone, conversation.NoShowNotice(lang, outcome.Blocked)); err != nil {
		zap.L().Warn("Failed to send no-show notice",
			zap.String("phone", appt.Phone), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"noShowCount": outcome.Count, "blocked": outcome.Blocked})
}

// GetReliabilityHandler returns a phone's no-show record. A phone with no
// history comes back with a zero count, not a 404.
func (ah *AdminHandler) GetReliabilityHandler(c *gin.Context) {
	record, err := ah.Reliability.GetRecord(c.Request.Context(), c.Param("phone"))
	if err != nil {
		zap.L().Error("Failed to fetch reliability record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reliability record"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ResetReliabilityHandler zeroes a phone's no-show counter, e.g. after the
// provider settles a dispute. Block entries are managed separately.
func (ah *AdminHandler) ResetReliabilityHandler(c *gin.Context) {
	phone := c.Param("phone")
	if err := ah.Reliability.ResetRecord(c.Request.Context(), phone); err != nil {
		zap.L().Error("Failed to reset reliability record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset reliability record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phone": phone, "reset": true})
}

type blockRequest struct {
	Phone      string `json:"phone" binding:"required"`
	ProviderID string `json:"providerId"` // empty blocks across all providers
	Reason     string `json:"reason"`
}

// BlockPhoneHandler adds a manual block entry.
func (ah *AdminHandler) BlockPhoneHandler(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block payload"})
		return
	}

	entry := &models.BlockEntry{
		Phone:      req.Phone,
		ProviderID: req.ProviderID,
		Reason:     req.Reason,
	}
	if err := ah.Reliability.AddBlock(c.Request.Context(), entry); err != nil {
		zap.L().Error("Failed to add block entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to block phone"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UnblockPhoneHandler removes block entries for a phone.
func (ah *AdminHandler) UnblockPhoneHandler(c *gin.Context) {
	phone := c.Param("phone")
	providerID := c.Query("providerId")
	if err := ah.Reliability.RemoveBlock(c.Request.Context(), phone, providerID); err != nil {
		zap.L().Error("Failed to remove block entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unblock phone"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phone": phone, "unblocked": true})
}

// ListBlocksHandler returns a provider's block entries plus the shared ones.
func (ah *AdminHandler) ListBlocksHandler(c *gin.Context) {
	blocks, err := ah.Reliability.ListBlocks(c.Request.Context(), c.Query("providerId"))
	if err != nil {
		zap.L().Error("Failed to list block entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list blocks"})
		return
	}
	c.JSON(http.StatusOK, blocks)
}

// ClearSessionHandler wipes one conversation's state. Administrative reset
// for a stuck dialogue.
func (ah *AdminHandler) ClearSessionHandler(c *gin.Context) {
	providerID := c.Query("providerId")
	slotID := c.Query("slotId")
	phone := c.Query("phone")
	if providerID == "" || slotID == "" || phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "providerId, slotId and phone are required"})
		return
	}

	if err := ah.Sessions.Clear(c.Request.Context(), providerID, slotID, phone); err != nil {
		zap.L().Error("Failed to clear session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// parseDate validates a civil date parameter.
func parseDate(raw string) (string, bool) {
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return "", false
	}
	return raw, true
}
