// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"bookline/database"
	"bookline/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotConflict is returned when a commit loses the race for an interval.
var ErrSlotConflict = errors.New("slot interval already taken")

// AppointmentRepository defines access to committed appointment records.
type AppointmentRepository interface {
	// CommitTransactionally inserts a confirmed appointment after an
	// in-transaction overlap check. Returns ErrSlotConflict if another
	// active appointment occupies any part of the interval.
	CommitTransactionally(ctx context.Context, appt *models.Appointment) error

	GetByID(ctx context.Context, apptID string) (*models.Appointment, error)
	GetActiveByDate(ctx context.Context, slotID, date string) ([]models.Appointment, error)
	ListByProvider(ctx context.Context, providerID string, limit int64) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, apptID, status string) error

	// FindUpcomingByPhone returns the next still-future confirmed
	// appointment for the phone on the slot, or nil.
	FindUpcomingByPhone(ctx context.Context, slotID, phone string, now time.Time, loc *time.Location) (*models.Appointment, error)

	// DueForReminder returns confirmed, not-yet-reminded appointments on
	// the given dates; the caller filters by instant.
	DueForReminder(ctx context.Context, dates []string) ([]models.Appointment, error)

	// MarkReminderSent flips the reminder flag and reports whether this
	// call was the one that flipped it.
	MarkReminderSent(ctx context.Context, apptID string) (bool, error)

	// ClearReminderSent releases a claim whose delivery failed so a retry
	// or the sweep can pick the appointment up again.
	ClearReminderSent(ctx context.Context, apptID string) error

	EnsureIndexes() error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("bookline")
	return &mongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
}
