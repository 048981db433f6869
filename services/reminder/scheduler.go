// File: services/reminder/scheduler.go
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"bookline/models"
	"bookline/utils"
)

// Scheduler enqueues one delayed reminder task per committed appointment.
type Scheduler struct {
	Client  *asynq.Client
	LeadMin int
	Loc     *time.Location
}

// NewScheduler builds a Scheduler over the given queue client.
func NewScheduler(client *asynq.Client, leadMin int, loc *time.Location) *Scheduler {
	return &Scheduler{Client: client, LeadMin: leadMin, Loc: loc}
}

// ScheduleReminder queues the reminder to fire leadMin before the
// appointment start. Appointments booked inside the lead window fire
// immediately.
func (s *Scheduler) ScheduleReminder(ctx context.Context, appt *models.Appointment) error {
	start, err := appt.StartTime(s.Loc)
	if err != nil {
		return fmt.Errorf("reminder fire time: %w", err)
	}
	fireAt := start.Add(-time.Duration(s.LeadMin) * time.Minute)
	if now := time.Now().In(s.Loc); fireAt.Before(now) {
		fireAt = now
	}

	task, opts, err := NewReminderTask(appt.ID, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}

	utils.GetLogger().Debug("reminder scheduled",
		zap.String("appointmentId", appt.ID),
		zap.Time("fireAt", fireAt))
	return nil
}
