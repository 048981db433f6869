// File: services/booking/manager.go
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appointmentRepo "bookline/database/repository/appointment"
	"bookline/models"
	"bookline/services/availability"
	"bookline/utils"
)

// AppointmentStore is the slice of the appointment repository the manager
// needs.
type AppointmentStore interface {
	GetActiveByDate(ctx context.Context, slotID, date string) ([]models.Appointment, error)
	CommitTransactionally(ctx context.Context, appt *models.Appointment) error
}

// BlockedStore provides the blocked ranges consulted during revalidation.
type BlockedStore interface {
	GetBlockedRanges(ctx context.Context, slotID, date string) ([]models.BlockedRange, error)
}

// ReminderScheduler is notified of every committed appointment.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appt *models.Appointment) error
}

// Manager validates a proposed time against live availability and commits
// the appointment atomically. It never fabricates a slot: the same
// calculator that rendered options validates the submission.
type Manager struct {
	Appointments AppointmentStore
	Blocked      BlockedStore
	Reminders    ReminderScheduler // optional
	StepMin      int
	Loc          *time.Location
}

// Commit books the session's accumulated selection at (date, startMin) on
// the slot. Availability is recomputed for that exact day immediately
// before the insert; a consumed target returns a SlotTakenError carrying
// the current alternatives, never a bare failure.
func (m *Manager) Commit(
	ctx context.Context,
	slot *models.Slot,
	sess *models.ConversationSession,
	date string,
	startMin int,
	now time.Time,
) (*models.Appointment, error) {
	logger := utils.GetLogger()

	day, err := time.ParseInLocation("2006-01-02", date, m.Loc)
	if err != nil {
		return nil, fmt.Errorf("invalid booking date %q: %w", date, err)
	}
	target := day.Add(time.Duration(startMin) * time.Minute)
	if !target.After(now.In(m.Loc)) {
		return nil, ErrPastTime
	}

	svc, err := resolveService(slot, sess)
	if err != nil {
		return nil, err
	}
	duration := sess.DurationMin
	if duration == 0 {
		duration = svc.DurationMin
	}

	appts, err := m.Appointments.GetActiveByDate(ctx, slot.ID, date)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	blocks, err := m.Blocked.GetBlockedRanges(ctx, slot.ID, date)
	if err != nil {
		return nil, fmt.Errorf("fetch blocked ranges: %w", err)
	}
	starts := availability.Compute(slot, appts, blocks, date, now, m.StepMin, m.Loc)
	if !availability.Contains(starts, startMin) {
		return nil, &SlotTakenError{Alternatives: starts}
	}
	// The calculator only vets start times; the full [start, start+duration)
	// interval must also clear every blocked range. Appointment interval
	// overlap is enforced by the transactional insert.
	for _, b := range blocks {
		if startMin < b.EndMin && startMin+duration > b.StartMin {
			return nil, &SlotTakenError{Alternatives: starts}
		}
	}

	appt := &models.Appointment{
		ID:          uuid.New().String(),
		ProviderID:  slot.ProviderID,
		SlotID:      slot.ID,
		Phone:       sess.Phone,
		Date:        date,
		StartMin:    startMin,
		DurationMin: duration,
		Status:      models.AppointmentConfirmed,
		ServiceID:   svc.ID,
		ServiceType: svc.Type,
		BasePrice:   svc.BasePrice,
		Extras:      sess.Extras,
		ExtrasTotal: sess.ExtrasTotal,
		TotalPrice:  svc.BasePrice + sess.ExtrasTotal,
		CreatedAt:   now,
	}

	if err := m.Appointments.CommitTransactionally(ctx, appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotConflict) {
			// Lost the race after revalidation; re-offer what is left now.
			starts, availErr := m.currentAvailability(ctx, slot, date, now)
			if availErr != nil {
				starts = nil
			}
			return nil, &SlotTakenError{Alternatives: starts}
		}
		return nil, fmt.Errorf("commit appointment: %w", err)
	}

	// Post-booking memory drives all subsequent dialogue for this client.
	sess.ResetSelection()
	sess.LastBookingTime = availability.Label(startMin)
	sess.LastBookingDate = date
	sess.LastBookingAddress = slot.ApproxAddress
	sess.LastBookingSlotID = slot.ID

	if m.Reminders != nil {
		if err := m.Reminders.ScheduleReminder(ctx, appt); err != nil {
			logger.Warn("failed to schedule reminder",
				zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}

	logger.Info("appointment committed",
		zap.String("providerId", appt.ProviderID),
		zap.String("slotId", appt.SlotID),
		zap.String("phone", appt.Phone),
		zap.String("date", appt.Date),
		zap.Int("startMin", appt.StartMin))

	return appt, nil
}

// CurrentAlternatives recomputes availability for display, e.g. after a
// rejected target.
func (m *Manager) CurrentAlternatives(ctx context.Context, slot *models.Slot, date string, now time.Time) ([]int, error) {
	return m.currentAvailability(ctx, slot, date, now)
}

func (m *Manager) currentAvailability(ctx context.Context, slot *models.Slot, date string, now time.Time) ([]int, error) {
	appts, err := m.Appointments.GetActiveByDate(ctx, slot.ID, date)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	blocks, err := m.Blocked.GetBlockedRanges(ctx, slot.ID, date)
	if err != nil {
		return nil, fmt.Errorf("fetch blocked ranges: %w", err)
	}
	return availability.Compute(slot, appts, blocks, date, now, m.StepMin, m.Loc), nil
}

// resolveService returns the session's selected offering, or a
// deterministic default: the first duration-matching active offering, else
// the first active one. A missing selection never blocks commit.
func resolveService(slot *models.Slot, sess *models.ConversationSession) (*models.ServiceOffering, error) {
	if sess.ServiceID != "" {
		for i := range slot.Services {
			if slot.Services[i].ID == sess.ServiceID {
				return &slot.Services[i], nil
			}
		}
	}
	var firstActive *models.ServiceOffering
	for i := range slot.Services {
		if !slot.Services[i].Active {
			continue
		}
		if firstActive == nil {
			firstActive = &slot.Services[i]
		}
		if sess.DurationMin > 0 && slot.Services[i].DurationMin == sess.DurationMin {
			return &slot.Services[i], nil
		}
	}
	if firstActive == nil {
		return nil, fmt.Errorf("slot %s has no active service offering", slot.ID)
	}
	return firstActive, nil
}
