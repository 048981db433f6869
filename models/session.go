package models

import "time"

// MaxHistoryMessages bounds the chat transcript kept on a session.
const MaxHistoryMessages = 20

// ChatMessage is one entry in a session's bounded transcript.
type ChatMessage struct {
	Role string `json:"role"` // "client" or "bot"
	Text string `json:"text"`
}

// ConversationSession holds the per-(provider, slot, phone) conversation
// state between messages. Transient selection fields are wiped on idle
// expiry; the LastBooking* fields survive until superseded.
type ConversationSession struct {
	ProviderID string `json:"providerId"`
	SlotID     string `json:"slotId"`
	Phone      string `json:"phone"`

	// Accumulated selection.
	ServiceID   string   `json:"serviceId,omitempty"`
	ServiceType string   `json:"serviceType,omitempty"`
	DurationMin int      `json:"durationMin,omitempty"`
	BasePrice   float64  `json:"basePrice,omitempty"`
	Extras      []string `json:"extras,omitempty"`
	ExtrasTotal float64  `json:"extrasTotal,omitempty"`

	// Slot options most recently rendered to the client.
	OfferedDate string      `json:"offeredDate,omitempty"` // "2006-01-02"
	SlotMap     map[int]int `json:"slotMap,omitempty"`     // ordinal -> start minutes

	History       []ChatMessage `json:"history,omitempty"`
	Language      string        `json:"language,omitempty"`
	OffTopicCount int           `json:"offTopicCount,omitempty"`

	// Memory of the most recent confirmed booking. Survives idle expiry.
	LastBookingTime    string `json:"lastBookingTime,omitempty"` // "15:04"
	LastBookingDate    string `json:"lastBookingDate,omitempty"` // "2006-01-02"
	LastBookingAddress string `json:"lastBookingAddress,omitempty"`
	LastBookingSlotID  string `json:"lastBookingSlotId,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// AppendMessage adds a transcript entry, dropping the oldest beyond the cap.
func (s *ConversationSession) AppendMessage(role, text string) {
	s.History = append(s.History, ChatMessage{Role: role, Text: text})
	if len(s.History) > MaxHistoryMessages {
		s.History = s.History[len(s.History)-MaxHistoryMessages:]
	}
}

// ResetSelection clears the transient selection state accumulated during a
// booking flow, leaving booking memory and language intact.
func (s *ConversationSession) ResetSelection() {
	s.ServiceID = ""
	s.ServiceType = ""
	s.DurationMin = 0
	s.BasePrice = 0
	s.Extras = nil
	s.ExtrasTotal = 0
	s.OfferedDate = ""
	s.SlotMap = nil
}
