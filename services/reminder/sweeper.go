// File: services/reminder/sweeper.go
package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bookline/models"
	"bookline/utils"
)

// DueStore lists appointments awaiting a reminder.
type DueStore interface {
	DueForReminder(ctx context.Context, dates []string) ([]models.Appointment, error)
}

// Sweeper is the catch-up path behind the delivery queue: queued tasks are
// lost if the queue database is flushed or a commit crashed between insert
// and enqueue, so a fixed-interval sweep re-delivers anything due but
// unsent. The ReminderSent claim in Deliver keeps the two paths from
// double-sending.
type Sweeper struct {
	Due      DueStore
	Sender   *Sender
	LeadMin  int
	Interval time.Duration
	Loc      *time.Location
}

// Run blocks, sweeping every interval until the context is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	now := time.Now().In(w.Loc)
	dates := []string{
		now.Format("2006-01-02"),
		now.AddDate(0, 0, 1).Format("2006-01-02"),
	}

	appts, err := w.Due.DueForReminder(ctx, dates)
	if err != nil {
		utils.GetLogger().Error("reminder sweep query failed", zap.Error(err))
		return
	}

	for i := range appts {
		appt := &appts[i]
		start, err := appt.StartTime(w.Loc)
		if err != nil {
			continue
		}
		fireAt := start.Add(-time.Duration(w.LeadMin) * time.Minute)
		if now.Before(fireAt) || !start.After(now) {
			continue
		}
		// One failed delivery must not block the rest of the batch.
		if err := w.Sender.Deliver(ctx, appt.ID); err != nil {
			utils.GetLogger().Error("reminder sweep delivery failed",
				zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}
}
