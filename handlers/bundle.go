// File: handlers/bundle.go
package handlers

// HandlerBundle groups the handlers the route registration needs.
type HandlerBundle struct {
	Webhook      *WebhookHandler
	Admin        *AdminHandler
	Slots        *SlotHandler
	Availability *AvailabilityHandler
}
