package models

import "time"

// Slot availability modes. Silent suppresses all bot activity; away sends
// at most one notice per rolling hour per client.
const (
	SlotModeNormal = "normal"
	SlotModeAway   = "away"
	SlotModeSilent = "silent"
)

// DayHours is the open/close window for one weekday, minutes from midnight.
type DayHours struct {
	OpenMin  int  `bson:"open_min" json:"openMin"`
	CloseMin int  `bson:"close_min" json:"closeMin"`
	Closed   bool `bson:"closed" json:"closed"`
}

// ServiceOffering is one bookable service configured on a slot.
type ServiceOffering struct {
	ID          string   `bson:"id" json:"id"`
	Type        string   `bson:"type" json:"type"`
	DurationMin int      `bson:"duration_min" json:"durationMin"`
	BasePrice   float64  `bson:"base_price" json:"basePrice"`
	Extras      []Extra  `bson:"extras,omitempty" json:"extras,omitempty"`
	Active      bool     `bson:"active" json:"active"`
}

// Extra is an optional add-on for a service offering.
type Extra struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// Slot represents a bookable calendar belonging to a provider, mapped to one
// chat channel address. BusinessHours is indexed by time.Weekday (Sunday=0).
type Slot struct {
	ID                  string            `bson:"id" json:"id"`
	ProviderID          string            `bson:"provider_id" json:"providerId"`
	Name                string            `bson:"name" json:"name"`
	Mode                string            `bson:"mode" json:"mode"` // "normal", "away", or "silent"
	BusinessHours       [7]DayHours       `bson:"business_hours" json:"businessHours"`
	ApproxAddress       string            `bson:"approx_address" json:"approxAddress"`
	ExactAddress        string            `bson:"exact_address" json:"exactAddress"`
	DisclosureWindowMin int               `bson:"disclosure_window_min,omitempty" json:"disclosureWindowMin,omitempty"` // 0 means use configured default
	Services            []ServiceOffering `bson:"services,omitempty" json:"services,omitempty"`
	Active              bool              `bson:"active" json:"active"`
}

// BlockedRange is an explicit exclusion interval on a slot's calendar.
type BlockedRange struct {
	ID        string    `bson:"id" json:"id"`
	SlotID    string    `bson:"slot_id" json:"slotId"`
	Date      string    `bson:"date" json:"date"` // "2006-01-02"
	StartMin  int       `bson:"start_min" json:"startMin"`
	EndMin    int       `bson:"end_min" json:"endMin"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Hours returns the business hours for the weekday of the given date.
func (s *Slot) Hours(weekday time.Weekday) DayHours {
	return s.BusinessHours[int(weekday)]
}

// DisclosureWindow returns the slot's pre-appointment disclosure window,
// falling back to the supplied default when unset.
func (s *Slot) DisclosureWindow(defaultMin int) int {
	if s.DisclosureWindowMin > 0 {
		return s.DisclosureWindowMin
	}
	return defaultMin
}
