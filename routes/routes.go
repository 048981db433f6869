package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bookline/handlers"
	"bookline/middleware"
)

// RegisterWebhookRoutes registers the chat transport edge.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/webhook")
	{
		api.POST("/message", hb.Webhook.HandleMessage)
	}
}

// RegisterAdminRoutes registers the dashboard-facing endpoints. All of them
// require the admin bearer token.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	api.Use(middleware.AdminAuthMiddleware())
	{
		// Appointment lifecycle.
		api.GET("/appointments", hb.Admin.ListAppointmentsHandler)
		api.POST("/appointments/:id/cancel", hb.Admin.CancelAppointmentHandler)
		api.POST("/appointments/:id/complete", hb.Admin.CompleteAppointmentHandler)
		api.POST("/appointments/:id/no-show", hb.Admin.ReportNoShowHandler)

		// Reliability counters.
		api.GET("/reliability/:phone", hb.Admin.GetReliabilityHandler)
		api.DELETE("/reliability/:phone", hb.Admin.ResetReliabilityHandler)

		// Blacklist management.
		api.GET("/blocks", hb.Admin.ListBlocksHandler)
		api.POST("/blocks", hb.Admin.BlockPhoneHandler)
		api.DELETE("/blocks/:phone", hb.Admin.UnblockPhoneHandler)

		// Conversation reset.
		api.DELETE("/sessions", hb.Admin.ClearSessionHandler)

		// Slot configuration.
		api.GET("/slots", hb.Slots.ListSlotsHandler)
		api.PUT("/slots", hb.Slots.UpsertSlotHandler)
		api.GET("/slots/:id", hb.Slots.GetSlotHandler)
		api.PATCH("/slots/:id/mode", hb.Slots.SetModeHandler)
		api.GET("/slots/:id/availability", hb.Availability.GetAvailabilityHandler)
		api.GET("/slots/:id/blocked-ranges", hb.Slots.ListBlockedRangesHandler)
		api.POST("/slots/:id/blocked-ranges", hb.Slots.AddBlockedRangeHandler)
		api.DELETE("/slots/:id/blocked-ranges/:blockId", hb.Slots.DeleteBlockedRangeHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Bookline"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
