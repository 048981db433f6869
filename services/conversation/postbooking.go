// File: services/conversation/postbooking.go
package conversation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bookline/models"
	"bookline/services/availability"
	"bookline/utils"
)

// handlePostBooking dispatches a message from a client who already has an
// upcoming appointment. New bookings are refused until the current one is
// resolved; everything else answers from the appointment itself.
func (e *Engine) handlePostBooking(
	ctx context.Context,
	slot *models.Slot,
	sess *models.ConversationSession,
	appt *models.Appointment,
	cls models.Classification,
	now time.Time,
) string {
	lang := sess.Language
	when := availability.Label(appt.StartMin)

	switch cls.Intent {
	case models.IntentTimeQuery, models.IntentBookingConfirm:
		return reply(lang, "booking_time", appt.Date, when)

	case models.IntentAddressQuery:
		if e.withinDisclosureWindow(slot, appt, now) {
			return reply(lang, "address_exact", slot.ExactAddress)
		}
		return reply(lang, "address_approx", slot.ApproxAddress)

	case models.IntentCancelRequest:
		return reply(lang, "cancel_ask", appt.Date, when)

	case models.IntentCancelConfirm:
		if err := e.Appointments.UpdateStatus(ctx, appt.ID, models.AppointmentCancelled); err != nil {
			utils.GetLogger().Error("cancel failed",
				zap.String("appointmentId", appt.ID), zap.Error(err))
			return reply(lang, "retry")
		}
		sess.LastBookingTime = ""
		sess.LastBookingDate = ""
		sess.LastBookingAddress = ""
		sess.LastBookingSlotID = ""
		utils.GetLogger().Info("appointment cancelled by client",
			zap.String("appointmentId", appt.ID),
			zap.String("phone", appt.Phone))
		return reply(lang, "cancelled")

	case models.IntentArrivalNotice:
		return reply(lang, "arrival_ack")

	case models.IntentGreeting:
		return reply(lang, "reassurance", appt.Date, when)

	case models.IntentPriceQuery:
		return e.priceList(slot, lang)

	case models.IntentExtrasQuery:
		return e.extrasList(slot, sess, lang)

	case models.IntentMediaRequest:
		return reply(lang, "media")

	case models.IntentAvailabilityQuery, models.IntentSlotSelection,
		models.IntentDurationChoice, models.IntentServiceChoice:
		// One outstanding appointment per client per slot.
		return reply(lang, "have_booking", appt.Date, when)

	default:
		return e.offTopicReply(sess, cls)
	}
}

// withinDisclosureWindow reports whether the exact address may be shared:
// the appointment start is at most the slot's disclosure window away.
func (e *Engine) withinDisclosureWindow(slot *models.Slot, appt *models.Appointment, now time.Time) bool {
	window := slot.DisclosureWindow(e.DisclosureMin)
	start, err := appt.StartTime(e.Loc)
	if err != nil {
		return false
	}
	return !now.Before(start.Add(-time.Duration(window) * time.Minute))
}
