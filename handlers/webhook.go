// File: handlers/webhook.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookline/services/conversation"
)

// WebhookHandler is the transport edge: the chat provider posts inbound
// messages here.
type WebhookHandler struct {
	Engine *conversation.Engine
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(engine *conversation.Engine) *WebhookHandler {
	return &WebhookHandler{Engine: engine}
}

type inboundMessage struct {
	ProviderID string `json:"providerId" binding:"required"`
	SlotID     string `json:"slotId" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Text       string `json:"text"`
}

// HandleMessage acknowledges the webhook immediately and processes the
// message in the background; the reply travels over the chat transport,
// not this response.
func (h *WebhookHandler) HandleMessage(c *gin.Context) {
	var msg inboundMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message payload"})
		return
	}

	go h.Engine.HandleInbound(context.Background(), msg.ProviderID, msg.SlotID, msg.Phone, msg.Text)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
