// File: services/reminder/tasks.go
package reminder

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeReminderSend = "reminder:send"

// ReminderPayload is the queued task body. Only the ID travels; the
// handler re-reads the appointment so stale queue entries cannot deliver
// outdated details.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
}

// NewReminderTask builds the delayed delivery task for one appointment.
func NewReminderTask(apptID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ReminderPayload{AppointmentID: apptID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReminderSend, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
