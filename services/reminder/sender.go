// File: services/reminder/sender.go
package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bookline/models"
	"bookline/services/availability"
	"bookline/services/messenger"
	"bookline/services/session"
	"bookline/utils"
)

// AppointmentStore is the slice of the appointment repository delivery
// needs.
type AppointmentStore interface {
	GetByID(ctx context.Context, apptID string) (*models.Appointment, error)
	MarkReminderSent(ctx context.Context, apptID string) (bool, error)
	ClearReminderSent(ctx context.Context, apptID string) error
}

// SlotStore resolves the slot for address disclosure.
type SlotStore interface {
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
}

// The reminder doubles as the exact-address disclosure, so the template
// always carries the full address.
var reminderTemplates = map[string]string{
	"en": "Reminder: your appointment is at %s on %s. Address: %s. See you soon!",
	"pt": "Lembrete: seu horário é às %s em %s. Endereço: %s. Até já!",
	"es": "Recordatorio: tu turno es a las %s el %s. Dirección: %s. ¡Hasta pronto!",
}

// Sender delivers one reminder message per confirmed appointment, claiming
// the idempotency flag before sending so the queue path and the catch-up
// sweep never double-deliver.
type Sender struct {
	Appointments AppointmentStore
	Slots        SlotStore
	Sessions     *session.Store // optional, for language memory
	Messenger    messenger.Messenger
	Loc          *time.Location
}

// Deliver looks up the appointment and sends its reminder. Cancelled,
// already-reminded and already-started appointments are skipped silently.
func (s *Sender) Deliver(ctx context.Context, apptID string) error {
	appt, err := s.Appointments.GetByID(ctx, apptID)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt == nil || appt.Status != models.AppointmentConfirmed {
		return nil
	}
	start, err := appt.StartTime(s.Loc)
	if err != nil {
		return fmt.Errorf("appointment start: %w", err)
	}
	if !start.After(time.Now().In(s.Loc)) {
		return nil
	}

	claimed, err := s.Appointments.MarkReminderSent(ctx, apptID)
	if err != nil {
		return fmt.Errorf("claim reminder: %w", err)
	}
	if !claimed {
		return nil
	}

	slot, err := s.Slots.GetByID(ctx, appt.SlotID)
	if err != nil {
		return fmt.Errorf("load slot: %w", err)
	}

	lang := "en"
	if s.Sessions != nil {
		if sess, err := s.Sessions.Load(ctx, appt.ProviderID, appt.SlotID, appt.Phone); err == nil && sess.Language != "" {
			lang = sess.Language
		}
	}
	tmpl, ok := reminderTemplates[lang]
	if !ok {
		tmpl = reminderTemplates["en"]
	}

	text := fmt.Sprintf(tmpl, availability.Label(appt.StartMin), appt.Date, slot.ExactAddress)
	if err := s.Messenger.SendText(ctx, appt.Phone, text); err != nil {
		// Release the claim so the queue retry or the sweep can deliver
		// later; a transient transport failure must not lose the reminder.
		if clearErr := s.Appointments.ClearReminderSent(ctx, apptID); clearErr != nil {
			utils.GetLogger().Error("failed to release reminder claim",
				zap.String("appointmentId", apptID), zap.Error(clearErr))
		}
		return fmt.Errorf("send reminder: %w", err)
	}

	utils.GetLogger().Info("reminder delivered",
		zap.String("appointmentId", appt.ID),
		zap.String("phone", appt.Phone))
	return nil
}
