package models

// Intent is the closed enumeration every inbound message resolves to. Free
// text never reaches control logic without passing through it.
type Intent string

const (
	IntentGreeting          Intent = "greeting"
	IntentAvailabilityQuery Intent = "availability_query"
	IntentPriceQuery        Intent = "price_query"
	IntentExtrasQuery       Intent = "extras_query"
	IntentDurationChoice    Intent = "duration_choice"
	IntentSlotSelection     Intent = "slot_selection"
	IntentServiceChoice     Intent = "service_choice"
	IntentBookingConfirm    Intent = "booking_confirm"
	IntentCancelRequest     Intent = "cancel_request"
	IntentCancelConfirm     Intent = "cancel_confirm"
	IntentAddressQuery      Intent = "address_query"
	IntentArrivalNotice     Intent = "arrival_notice"
	IntentTimeQuery         Intent = "time_query"
	IntentMediaRequest      Intent = "media_request"
	IntentOffTopic          Intent = "off_topic"
)

// ValidIntents lists every recognized intent, used to validate model output.
var ValidIntents = map[Intent]bool{
	IntentGreeting:          true,
	IntentAvailabilityQuery: true,
	IntentPriceQuery:        true,
	IntentExtrasQuery:       true,
	IntentDurationChoice:    true,
	IntentSlotSelection:     true,
	IntentServiceChoice:     true,
	IntentBookingConfirm:    true,
	IntentCancelRequest:     true,
	IntentCancelConfirm:     true,
	IntentAddressQuery:      true,
	IntentArrivalNotice:     true,
	IntentTimeQuery:         true,
	IntentMediaRequest:      true,
	IntentOffTopic:          true,
}

// Entities carries values extracted during classification so downstream
// resolution stays deterministic without a second model call.
type Entities struct {
	DurationMin int    `json:"durationMin,omitempty"`
	Ordinal     int    `json:"ordinal,omitempty"`     // 1-based slot pick, 0 when absent
	LiteralMin  int    `json:"literalMin,omitempty"`  // literal time as minutes from midnight, -1 when absent
	ServiceHint string `json:"serviceHint,omitempty"` // free-text service name fragment
	Language    string `json:"language,omitempty"`    // "en", "pt", "es"
}

// Classification is the structured result of routing one message.
type Classification struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
}
