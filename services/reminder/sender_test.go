// File: services/reminder/sender_test.go
package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookline/models"
)

type fakeApptStore struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
}

func (f *fakeApptStore) GetByID(_ context.Context, apptID string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.appts[apptID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeApptStore) MarkReminderSent(_ context.Context, apptID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[apptID]
	if !ok || a.ReminderSent {
		return false, nil
	}
	a.ReminderSent = true
	return true, nil
}

func (f *fakeApptStore) ClearReminderSent(_ context.Context, apptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.appts[apptID]; ok {
		a.ReminderSent = false
	}
	return nil
}

func (f *fakeApptStore) DueForReminder(_ context.Context, dates []string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dateSet := map[string]bool{}
	for _, d := range dates {
		dateSet[d] = true
	}
	var out []models.Appointment
	for _, a := range f.appts {
		if dateSet[a.Date] && a.Status == models.AppointmentConfirmed && !a.ReminderSent {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeSlotStore struct {
	slot *models.Slot
}

func (f *fakeSlotStore) GetByID(_ context.Context, _ string) (*models.Slot, error) {
	return f.slot, nil
}

type fakeMessenger struct {
	mu       sync.Mutex
	sends    []string
	failures int
}

func (f *fakeMessenger) SendText(_ context.Context, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("transport unavailable")
	}
	f.sends = append(f.sends, text)
	return nil
}

func futureAppt(id string, in time.Duration, loc *time.Location) *models.Appointment {
	start := time.Now().In(loc).Add(in)
	return &models.Appointment{
		ID:          id,
		ProviderID:  "prov1",
		SlotID:      "slot1",
		Phone:       "+5511999",
		Date:        start.Format("2006-01-02"),
		StartMin:    start.Hour()*60 + start.Minute(),
		DurationMin: 60,
		Status:      models.AppointmentConfirmed,
	}
}

func newTestSender(t *testing.T) (*Sender, *fakeApptStore, *fakeMessenger) {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	store := &fakeApptStore{appts: map[string]*models.Appointment{}}
	msgr := &fakeMessenger{}
	sender := &Sender{
		Appointments: store,
		Slots:        &fakeSlotStore{slot: &models.Slot{ID: "slot1", ExactAddress: "Rua Augusta 123"}},
		Messenger:    msgr,
		Loc:          loc,
	}
	return sender, store, msgr
}

func TestDeliverIncludesExactAddress(t *testing.T) {
	sender, store, msgr := newTestSender(t)
	store.appts["a1"] = futureAppt("a1", 2*time.Hour, sender.Loc)

	require.NoError(t, sender.Deliver(context.Background(), "a1"))

	require.Len(t, msgr.sends, 1)
	assert.Contains(t, msgr.sends[0], "Rua Augusta 123")
	assert.True(t, store.appts["a1"].ReminderSent)
}

func TestDeliverIsIdempotent(t *testing.T) {
	sender, store, msgr := newTestSender(t)
	store.appts["a1"] = futureAppt("a1", 2*time.Hour, sender.Loc)
	ctx := context.Background()

	require.NoError(t, sender.Deliver(ctx, "a1"))
	require.NoError(t, sender.Deliver(ctx, "a1"))

	assert.Len(t, msgr.sends, 1)
}

func TestDeliverReleasesClaimWhenSendFails(t *testing.T) {
	sender, store, msgr := newTestSender(t)
	store.appts["a1"] = futureAppt("a1", 2*time.Hour, sender.Loc)
	msgr.failures = 1
	ctx := context.Background()

	require.Error(t, sender.Deliver(ctx, "a1"))
	assert.False(t, store.appts["a1"].ReminderSent)

	// Retry succeeds and sends exactly once.
	require.NoError(t, sender.Deliver(ctx, "a1"))
	require.Len(t, msgr.sends, 1)
	assert.True(t, store.appts["a1"].ReminderSent)
}

func TestDeliverSkipsCancelledAndPast(t *testing.T) {
	sender, store, msgr := newTestSender(t)

	cancelled := futureAppt("a1", 2*time.Hour, sender.Loc)
	cancelled.Status = models.AppointmentCancelled
	store.appts["a1"] = cancelled
	store.appts["a2"] = futureAppt("a2", -2*time.Hour, sender.Loc)

	ctx := context.Background()
	require.NoError(t, sender.Deliver(ctx, "a1"))
	require.NoError(t, sender.Deliver(ctx, "a2"))
	require.NoError(t, sender.Deliver(ctx, "missing"))

	assert.Empty(t, msgr.sends)
	assert.False(t, store.appts["a1"].ReminderSent)
}

func TestSweepDeliversOnlyInsideLeadWindow(t *testing.T) {
	sender, store, msgr := newTestSender(t)
	store.appts["due"] = futureAppt("due", 30*time.Minute, sender.Loc)
	store.appts["early"] = futureAppt("early", 5*time.Hour, sender.Loc)

	w := &Sweeper{
		Due:      store,
		Sender:   sender,
		LeadMin:  60,
		Interval: time.Minute,
		Loc:      sender.Loc,
	}
	w.sweep(context.Background())

	require.Len(t, msgr.sends, 1)
	assert.True(t, store.appts["due"].ReminderSent)
	assert.False(t, store.appts["early"].ReminderSent)
}

func TestSweepIsIdempotentAcrossRuns(t *testing.T) {
	sender, store, msgr := newTestSender(t)
	store.appts["due"] = futureAppt("due", 30*time.Minute, sender.Loc)

	w := &Sweeper{Due: store, Sender: sender, LeadMin: 60, Interval: time.Minute, Loc: sender.Loc}
	w.sweep(context.Background())
	w.sweep(context.Background())

	assert.Len(t, msgr.sends, 1)
}
