// File: services/conversation/engine.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookline/models"
	"bookline/services/availability"
	"bookline/services/booking"
	"bookline/services/guard"
	"bookline/services/intent"
	"bookline/services/messenger"
	"bookline/services/session"
	"bookline/utils"
)

// maxDisplayedSlots truncates the rendered option list; the calculator
// itself imposes no maximum.
const maxDisplayedSlots = 8

// offerHorizonDays is how far ahead the engine searches for a day with
// open times when the client asks for availability.
const offerHorizonDays = 7

// SlotStore resolves the slot a chat channel maps to.
type SlotStore interface {
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
}

// AppointmentStore is the slice of the appointment repository the engine
// consults for post-booking state.
type AppointmentStore interface {
	FindUpcomingByPhone(ctx context.Context, slotID, phone string, now time.Time, loc *time.Location) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, apptID, status string) error
}

// Engine owns the inbound message pipeline: guard, session, classification,
// dispatch, persist, reply. Handlers for the same (provider, slot, phone)
// key are serialized; different keys run fully in parallel.
type Engine struct {
	Slots         SlotStore
	Appointments  AppointmentStore
	Sessions      *session.Store
	Router        *intent.Router
	Guard         *guard.Guard
	Booking       *booking.Manager
	Messenger     messenger.Messenger
	Loc           *time.Location
	DisclosureMin int              // default disclosure window
	Now           func() time.Time // injectable clock, defaults to time.Now

	locks conversationLocks
}

// HandleInbound processes one inbound chat message end to end. It never
// returns an error: every failure is either silent by design or answered
// with a localized retry prompt.
func (e *Engine) HandleInbound(ctx context.Context, providerID, slotID, phone, text string) {
	unlock := e.locks.acquire(providerID, slotID, phone)
	defer unlock()

	logger := utils.GetLogger().With(
		zap.String("providerId", providerID),
		zap.String("slotId", slotID),
		zap.String("phone", phone),
	)

	slot, err := e.Slots.GetByID(ctx, slotID)
	if err != nil {
		logger.Error("inbound for unknown slot", zap.Error(err))
		return
	}
	if !slot.Active {
		return
	}

	decision, err := e.Guard.Check(ctx, slot, phone)
	if err != nil {
		logger.Error("guard check failed", zap.Error(err))
		return
	}
	switch decision {
	case guard.Drop:
		return
	case guard.AwayNotice:
		lang := intent.DetectLanguage(text, "en")
		e.send(ctx, logger, phone, reply(lang, "away_notice"))
		return
	}

	sess, err := e.Sessions.Load(ctx, providerID, slotID, phone)
	if err != nil {
		logger.Error("session load failed", zap.Error(err))
		e.send(ctx, logger, phone, reply(intent.DetectLanguage(text, "en"), "retry"))
		return
	}

	now := e.now()
	upcoming, err := e.Appointments.FindUpcomingByPhone(ctx, slotID, phone, now, e.Loc)
	if err != nil {
		logger.Error("upcoming lookup failed", zap.Error(err))
		upcoming = nil
	}

	cls := e.Router.Classify(ctx, text, sess.Language, sess.History, upcoming != nil)
	if cls.Entities.Language != "" {
		sess.Language = cls.Entities.Language
	}
	sess.AppendMessage("client", text)

	var out string
	if upcoming != nil {
		out = e.handlePostBooking(ctx, slot, sess, upcoming, cls, now)
	} else {
		out = e.handleOpen(ctx, slot, sess, cls, now)
	}
	sess.AppendMessage("bot", out)

	// Persist must complete before the outbound send: the client's next
	// message may arrive the moment the reply lands.
	if err := e.Sessions.Persist(ctx, sess); err != nil {
		logger.Error("session persist failed", zap.Error(err))
		e.send(ctx, logger, phone, reply(sess.Language, "retry"))
		return
	}

	e.send(ctx, logger, phone, out)
}

func (e *Engine) send(ctx context.Context, logger *zap.Logger, phone, text string) {
	if err := e.Messenger.SendText(ctx, phone, text); err != nil {
		// Transport failures are dropped; they must not affect other
		// clients' handlers.
		logger.Warn("outbound send failed", zap.Error(err))
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// handleOpen dispatches a message from a client with no outstanding
// booking.
func (e *Engine) handleOpen(
	ctx context.Context,
	slot *models.Slot,
	sess *models.ConversationSession,
	cls models.Classification,
	now time.Time,
) string {
	lang := sess.Language

	switch cls.Intent {
	case models.IntentGreeting:
		return reply(lang, "greeting")

	case models.IntentAvailabilityQuery:
		return e.offerAvailability(ctx, slot, sess, now)

	case models.IntentPriceQuery:
		return e.priceList(slot, lang)

	case models.IntentExtrasQuery:
		return e.extrasList(slot, sess, lang)

	case models.IntentDurationChoice:
		// The classifier can flag a duration choice without actually
		// extracting one; never record a zero duration.
		if cls.Entities.DurationMin <= 0 {
			return reply(lang, "which_duration")
		}
		sess.DurationMin = cls.Entities.DurationMin
		for i := range slot.Services {
			if slot.Services[i].Active && slot.Services[i].DurationMin == sess.DurationMin {
				e.selectService(sess, &slot.Services[i])
				break
			}
		}
		return reply(lang, "duration_set", sess.DurationMin, e.offerAvailability(ctx, slot, sess, now))

	case models.IntentServiceChoice:
		if svc := matchService(slot, cls.Entities.ServiceHint, sess.History); svc != nil {
			e.selectService(sess, svc)
			return reply(lang, "service_set", svc.Type, svc.BasePrice, e.offerAvailability(ctx, slot, sess, now))
		}
		return reply(lang, "service_unknown", e.priceList(slot, lang))

	case models.IntentSlotSelection:
		return e.tryBook(ctx, slot, sess, cls.Entities, now)

	case models.IntentBookingConfirm:
		// A bare confirmation only works when exactly one option is on
		// the table; otherwise ask which time.
		if len(sess.SlotMap) == 1 {
			for _, startMin := range sess.SlotMap {
				return e.commit(ctx, slot, sess, sess.OfferedDate, startMin, now)
			}
		}
		return reply(lang, "which_time")

	case models.IntentCancelRequest, models.IntentCancelConfirm:
		// Cancelling with no booking found is a no-op reply, not an error.
		return reply(lang, "cancel_nothing")

	case models.IntentAddressQuery:
		return reply(lang, "address_approx", slot.ApproxAddress)

	case models.IntentTimeQuery:
		if sess.LastBookingTime != "" {
			return reply(lang, "booking_time", sess.LastBookingDate, sess.LastBookingTime)
		}
		return reply(lang, "no_booking")

	case models.IntentArrivalNotice:
		return reply(lang, "arrival_ack")

	case models.IntentMediaRequest:
		return reply(lang, "media")

	default:
		return e.offTopicReply(sess, cls)
	}
}

// offTopicReply applies the progressive guardrail. Low-confidence
// off-topic is ambiguous-but-harmless chatter and must not escalate.
func (e *Engine) offTopicReply(sess *models.ConversationSession, cls models.Classification) string {
	if cls.Confidence < 0.6 {
		return reply(sess.Language, "off_topic_1")
	}
	sess.OffTopicCount++
	if sess.OffTopicCount >= 2 {
		return reply(sess.Language, "off_topic_2")
	}
	return reply(sess.Language, "off_topic_1")
}

// offerAvailability finds the first day within the horizon that has open
// times, records the ordinal mapping on the session, and renders the list.
func (e *Engine) offerAvailability(
	ctx context.Context,
	slot *models.Slot,
	sess *models.ConversationSession,
	now time.Time,
) string {
	for d := 0; d < offerHorizonDays; d++ {
		date := now.In(e.Loc).AddDate(0, 0, d).Format("2006-01-02")
		starts, err := e.Booking.CurrentAlternatives(ctx, slot, date, now)
		if err != nil {
			utils.GetLogger().Error("availability lookup failed",
				zap.String("slotId", slot.ID), zap.String("date", date), zap.Error(err))
			return reply(sess.Language, "retry")
		}
		if len(starts) == 0 {
			continue
		}
		if len(starts) > maxDisplayedSlots {
			starts = starts[:maxDisplayedSlots]
		}
		sess.OfferedDate = date
		sess.SlotMap = make(map[int]int, len(starts))
		var lines []string
		for i, startMin := range starts {
			sess.SlotMap[i+1] = startMin
			lines = append(lines, fmt.Sprintf("%d) %s", i+1, availability.Label(startMin)))
		}
		return reply(sess.Language, "availability", date, strings.Join(lines, "\n"))
	}
	return reply(sess.Language, "no_availability")
}

// tryBook resolves the selection entities into a concrete target and
// commits it.
func (e *Engine) tryBook(
	ctx context.Context,
	slot *models.Slot,
	sess *models.ConversationSession,
	ents models.Entities,
	now time.Time,
) string {
	date, startMin, ok := e.resolveTarget(sess, ents, now)
	if !ok {
		return reply(sess.Language, "which_time")
	}
	return e.commit(ctx, slot, sess, date, startMin, now)
}

// resolveTarget maps an ordinal through the session's rendered option list,
// or anchors a literal time to the offered date (falling back to the next
// occurrence of that time).
func (e *Engine) resolveTarget(sess *models.ConversationSession, ents models.Entities, now time.Time) (string, int, bool) {
	if ents.Ordinal > 0 && sess.SlotMap != nil {
		if startMin, ok := sess.SlotMap[ents.Ordinal]; ok {
			return sess.OfferedDate, startMin, true
		}
	}
	if ents.LiteralMin >= 0 {
		if sess.OfferedDate != "" {
			return sess.OfferedDate, ents.LiteralMin, true
		}
		local := now.In(e.Loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.Loc)
		if day.Add(time.Duration(ents.LiteralMin) * time.Minute).After(local) {
			return day.Format("2006-01-02"), ents.LiteralMin, true
		}
		return day.AddDate(0, 0, 1).Format("2006-01-02"), ents.LiteralMin, true
	}
	return "", 0, false
}

func (e *Engine) commit(
	ctx context.Context,
	slot *models.Slot,
	sess *models.ConversationSession,
	date string,
	startMin int,
	now time.Time,
) string {
	lang := sess.Language
	appt, err := e.Booking.Commit(ctx, slot, sess, date, startMin, now)
	if err != nil {
		var taken *booking.SlotTakenError
		switch {
		case errors.Is(err, booking.ErrPastTime):
			return reply(lang, "past_time")
		case errors.As(err, &taken):
			alts := taken.Alternatives
			if len(alts) == 0 {
				return reply(lang, "no_availability")
			}
			if len(alts) > maxDisplayedSlots {
				alts = alts[:maxDisplayedSlots]
			}
			// Re-map ordinals onto the fresh list so the next pick works.
			sess.OfferedDate = date
			sess.SlotMap = make(map[int]int, len(alts))
			var lines []string
			for i, s := range alts {
				sess.SlotMap[i+1] = s
				lines = append(lines, fmt.Sprintf("%d) %s", i+1, availability.Label(s)))
			}
			return reply(lang, "slot_taken", strings.Join(lines, "\n"))
		default:
			utils.GetLogger().Error("booking commit failed",
				zap.String("slotId", slot.ID), zap.String("phone", sess.Phone), zap.Error(err))
			return reply(lang, "retry")
		}
	}
	return reply(lang, "booked", appt.Date, availability.Label(appt.StartMin), slot.ApproxAddress)
}

func (e *Engine) selectService(sess *models.ConversationSession, svc *models.ServiceOffering) {
	sess.ServiceID = svc.ID
	sess.ServiceType = svc.Type
	sess.DurationMin = svc.DurationMin
	sess.BasePrice = svc.BasePrice
}

func (e *Engine) priceList(slot *models.Slot, lang string) string {
	var lines []string
	for _, svc := range slot.Services {
		if !svc.Active {
			continue
		}
		lines = append(lines, reply(lang, "price_line", svc.Type, svc.DurationMin, svc.BasePrice))
	}
	return reply(lang, "prices", strings.Join(lines, "\n"))
}

func (e *Engine) extrasList(slot *models.Slot, sess *models.ConversationSession, lang string) string {
	var svc *models.ServiceOffering
	for i := range slot.Services {
		if slot.Services[i].ID == sess.ServiceID {
			svc = &slot.Services[i]
			break
		}
		if svc == nil && slot.Services[i].Active {
			svc = &slot.Services[i]
		}
	}
	if svc == nil || len(svc.Extras) == 0 {
		return reply(lang, "no_extras")
	}
	var lines []string
	for _, ex := range svc.Extras {
		lines = append(lines, reply(lang, "extra_line", ex.Name, ex.Price))
	}
	return reply(lang, "extras", strings.Join(lines, "\n"))
}

// matchService matches a service hint (or, failing that, the raw client
// text) against offering types by substring.
func matchService(slot *models.Slot, hint string, history []models.ChatMessage) *models.ServiceOffering {
	candidates := []string{strings.ToLower(hint)}
	if len(history) > 0 {
		candidates = append(candidates, strings.ToLower(history[len(history)-1].Text))
	}
	for i := range slot.Services {
		if !slot.Services[i].Active {
			continue
		}
		t := strings.ToLower(slot.Services[i].Type)
		for _, c := range candidates {
			if c != "" && strings.Contains(c, t) {
				return &slot.Services[i]
			}
		}
	}
	return nil
}
