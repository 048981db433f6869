// File: services/conversation/engine_test.go
package conversation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appointmentRepo "bookline/database/repository/appointment"
	"bookline/models"
	"bookline/services/booking"
	"bookline/services/guard"
	"bookline/services/intent"
	"bookline/services/session"
)

type fakeBackend struct {
	mu     sync.Mutex
	slot   *models.Slot
	appts  []models.Appointment
	blocks []models.BlockedRange
}

func (f *fakeBackend) GetByID(_ context.Context, _ string) (*models.Slot, error) {
	return f.slot, nil
}

func (f *fakeBackend) GetActiveByDate(_ context.Context, slotID, date string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if a.SlotID == slotID && a.Date == date && a.Active() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeBackend) CommitTransactionally(_ context.Context, appt *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.appts {
		if ex.SlotID == appt.SlotID && ex.Date == appt.Date && ex.Active() &&
			appt.StartMin < ex.EndMin() && appt.EndMin() > ex.StartMin {
			return appointmentRepo.ErrSlotConflict
		}
	}
	f.appts = append(f.appts, *appt)
	return nil
}

func (f *fakeBackend) FindUpcomingByPhone(_ context.Context, slotID, phone string, now time.Time, loc *time.Location) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.appts {
		a := f.appts[i]
		if a.SlotID != slotID || a.Phone != phone || a.Status != models.AppointmentConfirmed {
			continue
		}
		start, err := a.StartTime(loc)
		if err != nil {
			continue
		}
		if start.After(now) {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) UpdateStatus(_ context.Context, apptID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.appts {
		if f.appts[i].ID == apptID {
			f.appts[i].Status = status
			return nil
		}
	}
	return nil
}

func (f *fakeBackend) GetBlockedRanges(_ context.Context, slotID, date string) ([]models.BlockedRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BlockedRange
	for _, b := range f.blocks {
		if b.SlotID == slotID && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeReliability struct {
	blocked bool
	count   int
}

func (f *fakeReliability) IncrementNoShow(_ context.Context, _, _ string) (int, error) {
	f.count++
	return f.count, nil
}

func (f *fakeReliability) AddBlock(_ context.Context, _ *models.BlockEntry) error {
	f.blocked = true
	return nil
}

func (f *fakeReliability) IsBlocked(_ context.Context, _, _ string) (bool, error) {
	return f.blocked, nil
}

type fakeMessenger struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeMessenger) SendText(_ context.Context, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, text)
	return nil
}

func (f *fakeMessenger) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sends) == 0 {
		return ""
	}
	return f.sends[len(f.sends)-1]
}

func (f *fakeMessenger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

type stubAI struct {
	out string
}

func (s stubAI) Complete(_ context.Context, _ string) (string, error) {
	return s.out, nil
}

// Fixed clock: Monday 2025-03-10 09:00 in the business timezone.
func testClock(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeBackend, *fakeMessenger) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	slot := &models.Slot{
		ID:            "slot1",
		ProviderID:    "prov1",
		Name:          "Studio",
		Mode:          models.SlotModeNormal,
		ApproxAddress: "Pinheiros",
		ExactAddress:  "Rua Augusta 123",
		Services: []models.ServiceOffering{
			{ID: "svc1", Type: "haircut", DurationMin: 60, BasePrice: 80,
				Extras: []models.Extra{{Name: "beard trim", Price: 20}}, Active: true},
		},
		Active: true,
	}
	for i := range slot.BusinessHours {
		slot.BusinessHours[i] = models.DayHours{OpenMin: 540, CloseMin: 1080}
	}

	backend := &fakeBackend{slot: slot}
	msgr := &fakeMessenger{}
	eng := &Engine{
		Slots:        backend,
		Appointments: backend,
		Sessions:     session.NewStore(client, 30*time.Minute),
		Router:       intent.NewRouter(nil),
		Guard:        &guard.Guard{Reliability: &fakeReliability{}, Cache: client, BlockThreshold: 2},
		Booking: &booking.Manager{
			Appointments: backend,
			Blocked:      backend,
			StepMin:      30,
			Loc:          loc,
		},
		Messenger:     msgr,
		Loc:           loc,
		DisclosureMin: 90,
		Now:           testClock(loc),
	}
	return eng, backend, msgr
}

func TestAvailabilityThenOrdinalBooking(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "what times are available?")
	offer := msgr.last()
	assert.Contains(t, offer, "2025-03-10")
	assert.Contains(t, offer, "1) 09:30")
	assert.Contains(t, offer, "2) 10:00")

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "2")
	assert.Contains(t, msgr.last(), "10:00")
	assert.Contains(t, msgr.last(), "confirmed")
	assert.Contains(t, msgr.last(), "Pinheiros")

	require.Len(t, backend.appts, 1)
	appt := backend.appts[0]
	assert.Equal(t, 600, appt.StartMin)
	assert.Equal(t, "2025-03-10", appt.Date)
	assert.Equal(t, models.AppointmentConfirmed, appt.Status)
	assert.Equal(t, "svc1", appt.ServiceID)

	sess, err := eng.Sessions.Load(ctx, "prov1", "slot1", "+5511999")
	require.NoError(t, err)
	assert.Equal(t, "10:00", sess.LastBookingTime)
	assert.Equal(t, "2025-03-10", sess.LastBookingDate)
	assert.Nil(t, sess.SlotMap)
}

func TestLiteralTimeBooking(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)

	eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "can I come at 14:00?")

	assert.Contains(t, msgr.last(), "14:00")
	require.Len(t, backend.appts, 1)
	assert.Equal(t, 840, backend.appts[0].StartMin)
	assert.Equal(t, "2025-03-10", backend.appts[0].Date)
}

func TestTakenTimeOffersAlternatives(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	backend.appts = append(backend.appts, models.Appointment{
		ID: "a1", SlotID: "slot1", Phone: "+5511000", Date: "2025-03-10",
		StartMin: 840, DurationMin: 60, Status: models.AppointmentConfirmed,
	})

	eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "14:00")

	out := msgr.last()
	assert.Contains(t, out, "taken")
	assert.NotContains(t, out, "1) 14:00")
	assert.Contains(t, out, "09:30")
	require.Len(t, backend.appts, 1)

	// The re-offered ordinals stay live for the next pick.
	eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "1")
	require.Len(t, backend.appts, 2)
	assert.Equal(t, 570, backend.appts[1].StartMin)
}

func TestPostBookingRefusesSecondBooking(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	backend.appts = append(backend.appts, models.Appointment{
		ID: "a1", SlotID: "slot1", Phone: "+5511999", Date: "2025-03-11",
		StartMin: 600, DurationMin: 60, Status: models.AppointmentConfirmed,
	})
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "what times are available?")
	assert.Contains(t, msgr.last(), "already have an appointment")
	assert.Contains(t, msgr.last(), "2025-03-11")
	require.Len(t, backend.appts, 1)

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "when is my appointment?")
	assert.Contains(t, msgr.last(), "10:00")
}

func TestAddressDisclosureWindow(t *testing.T) {
	t.Run("before window", func(t *testing.T) {
		eng, backend, msgr := newTestEngine(t)
		backend.appts = append(backend.appts, models.Appointment{
			ID: "a1", SlotID: "slot1", Phone: "+5511999", Date: "2025-03-10",
			StartMin: 900, DurationMin: 60, Status: models.AppointmentConfirmed,
		})

		eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "what's the address?")
		assert.Contains(t, msgr.last(), "Pinheiros")
		assert.NotContains(t, msgr.last(), "Rua Augusta 123")
	})

	t.Run("within window", func(t *testing.T) {
		eng, backend, msgr := newTestEngine(t)
		backend.appts = append(backend.appts, models.Appointment{
			ID: "a1", SlotID: "slot1", Phone: "+5511999", Date: "2025-03-10",
			StartMin: 600, DurationMin: 60, Status: models.AppointmentConfirmed,
		})

		eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "what's the address?")
		assert.Contains(t, msgr.last(), "Rua Augusta 123")
	})

	t.Run("per-slot override", func(t *testing.T) {
		eng, backend, msgr := newTestEngine(t)
		backend.slot.DisclosureWindowMin = 30
		backend.appts = append(backend.appts, models.Appointment{
			ID: "a1", SlotID: "slot1", Phone: "+5511999", Date: "2025-03-10",
			StartMin: 600, DurationMin: 60, Status: models.AppointmentConfirmed,
		})

		eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "what's the address?")
		assert.Contains(t, msgr.last(), "Pinheiros")
	})
}

func TestCancelFlow(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	backend.appts = append(backend.appts, models.Appointment{
		ID: "a1", SlotID: "slot1", Phone: "+5511999", Date: "2025-03-11",
		StartMin: 600, DurationMin: 60, Status: models.AppointmentConfirmed,
	})
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "I need to cancel")
	assert.Contains(t, strings.ToLower(msgr.last()), "cancel")
	assert.Equal(t, models.AppointmentConfirmed, backend.appts[0].Status)

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "yes")
	assert.Equal(t, models.AppointmentCancelled, backend.appts[0].Status)
	assert.Contains(t, strings.ToLower(msgr.last()), "cancelled")

	sess, err := eng.Sessions.Load(ctx, "prov1", "slot1", "+5511999")
	require.NoError(t, err)
	assert.Empty(t, sess.LastBookingTime)
}

func TestCancelWithNothingBooked(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)

	eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "cancel my appointment")

	assert.Contains(t, msgr.last(), "no appointment to cancel")
	assert.Empty(t, backend.appts)
}

func TestSilentModeDropsEverything(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	backend.slot.Mode = models.SlotModeSilent

	eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "hello")

	assert.Zero(t, msgr.count())
}

func TestAwayModeSendsSingleNotice(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	backend.slot.Mode = models.SlotModeAway
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "hello")
	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "anyone there?")

	assert.Equal(t, 1, msgr.count())
	assert.Contains(t, msgr.last(), "away")
}

func TestBlockedClientIsDroppedSilently(t *testing.T) {
	eng, _, msgr := newTestEngine(t)
	eng.Guard.Reliability = &fakeReliability{blocked: true}

	eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "what times are available?")

	assert.Zero(t, msgr.count())
}

func TestInactiveSlotIsDropped(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	backend.slot.Active = false

	eng.HandleInbound(context.Background(), "prov1", "slot1", "+5511999", "hello")

	assert.Zero(t, msgr.count())
}

func TestOffTopicGuardrailEscalates(t *testing.T) {
	eng, _, msgr := newTestEngine(t)
	eng.Router = intent.NewRouter(stubAI{out: "off_topic"})
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "blah blah blah")
	assert.Equal(t, reply("en", "off_topic_1"), msgr.last())

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "blah blah blah")
	assert.Equal(t, reply("en", "off_topic_2"), msgr.last())
}

func TestDurationChoiceWithoutMinutesAsksAgain(t *testing.T) {
	eng, _, msgr := newTestEngine(t)
	eng.Router = intent.NewRouter(stubAI{out: "duration_choice"})
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "something shorter maybe")

	assert.Equal(t, reply("en", "which_duration"), msgr.last())
	sess, err := eng.Sessions.Load(ctx, "prov1", "slot1", "+5511999")
	require.NoError(t, err)
	assert.Zero(t, sess.DurationMin)
}

func TestLowConfidenceOffTopicDoesNotEscalate(t *testing.T) {
	eng, _, msgr := newTestEngine(t)
	ctx := context.Background()

	// No rules match and no model is configured, so classification degrades
	// to low-confidence off-topic. That must never escalate the guardrail.
	for i := 0; i < 3; i++ {
		eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "blah blah blah")
		assert.Equal(t, reply("en", "off_topic_1"), msgr.last())
	}

	sess, err := eng.Sessions.Load(ctx, "prov1", "slot1", "+5511999")
	require.NoError(t, err)
	assert.Zero(t, sess.OffTopicCount)
}

func TestPortugueseConversation(t *testing.T) {
	eng, backend, msgr := newTestEngine(t)
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "oi, quero marcar um horário")
	assert.Contains(t, msgr.last(), "horários livres")

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "1")
	assert.Contains(t, msgr.last(), "confirmado")
	require.Len(t, backend.appts, 1)
	assert.Equal(t, 570, backend.appts[0].StartMin)

	// Language memory survives a short numeric follow-up.
	sess, err := eng.Sessions.Load(ctx, "prov1", "slot1", "+5511999")
	require.NoError(t, err)
	assert.Equal(t, "pt", sess.Language)
}

func TestPriceAndExtrasListing(t *testing.T) {
	eng, _, msgr := newTestEngine(t)
	ctx := context.Background()

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "how much does it cost?")
	assert.Contains(t, msgr.last(), "haircut")
	assert.Contains(t, msgr.last(), "80.00")

	eng.HandleInbound(ctx, "prov1", "slot1", "+5511999", "what extras do you have?")
	assert.Contains(t, msgr.last(), "beard trim")
	assert.Contains(t, msgr.last(), "20.00")
}
