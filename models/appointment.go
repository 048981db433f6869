package models

import "time"

// Appointment statuses.
const (
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

// Appointment represents a committed booking record.
type Appointment struct {
	ID           string    `bson:"id" json:"id"`                       // Unique appointment identifier (UUID)
	ProviderID   string    `bson:"provider_id" json:"providerId"`      // Provider who owns the slot
	SlotID       string    `bson:"slot_id" json:"slotId"`              // Calendar the appointment lives on
	Phone        string    `bson:"phone" json:"phone"`                 // Client chat identity
	Date         string    `bson:"date" json:"date"`                   // "2006-01-02" in the business timezone
	StartMin     int       `bson:"start_min" json:"startMin"`          // Start time (minutes from midnight)
	DurationMin  int       `bson:"duration_min" json:"durationMin"`    // Appointment length
	Status       string    `bson:"status" json:"status"`               // confirmed, completed, cancelled, no_show
	ServiceID    string    `bson:"service_id" json:"serviceId"`
	ServiceType  string    `bson:"service_type" json:"serviceType"`
	BasePrice    float64   `bson:"base_price" json:"basePrice"`
	Extras       []string  `bson:"extras,omitempty" json:"extras,omitempty"`
	ExtrasTotal  float64   `bson:"extras_total,omitempty" json:"extrasTotal,omitempty"`
	TotalPrice   float64   `bson:"total_price" json:"totalPrice"`
	ReminderSent bool      `bson:"reminder_sent" json:"reminderSent"` // idempotency flag for the reminder sweep
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// EndMin returns the exclusive end of the appointment interval.
func (a *Appointment) EndMin() int {
	return a.StartMin + a.DurationMin
}

// Active reports whether the appointment still occupies its interval.
func (a *Appointment) Active() bool {
	return a.Status == AppointmentConfirmed || a.Status == AppointmentCompleted
}

// StartTime converts the civil date and start minutes into an absolute
// instant in the given location.
func (a *Appointment) StartTime(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", a.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(a.StartMin) * time.Minute), nil
}
