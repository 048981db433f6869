package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookline/models"
)

func testSlot() *models.Slot {
	slot := &models.Slot{
		ID:         "slot-1",
		ProviderID: "prov-1",
		Mode:       models.SlotModeNormal,
		Active:     true,
	}
	// Open 09:00-17:00 every day.
	for i := range slot.BusinessHours {
		slot.BusinessHours[i] = models.DayHours{OpenMin: 9 * 60, CloseMin: 17 * 60}
	}
	return slot
}

func TestComputeFullOpenDay(t *testing.T) {
	// Call well before the day starts so every slot is in the future.
	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	starts := Compute(testSlot(), nil, nil, "2026-03-10", now, 30, time.UTC)

	require.Len(t, starts, 16)
	assert.Equal(t, "09:00", Label(starts[0]))
	assert.Equal(t, "16:30", Label(starts[len(starts)-1]))
	// 17:00 is the close, never a start.
	assert.False(t, Contains(starts, 17*60))
}

func TestComputeExcludesAppointmentInterval(t *testing.T) {
	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	appts := []models.Appointment{
		{SlotID: "slot-1", Date: "2026-03-10", StartMin: 14 * 60, DurationMin: 60, Status: models.AppointmentConfirmed},
	}
	starts := Compute(testSlot(), appts, nil, "2026-03-10", now, 30, time.UTC)

	assert.False(t, Contains(starts, 14*60))
	assert.False(t, Contains(starts, 14*60+30))
	assert.True(t, Contains(starts, 13*60+30))
	assert.True(t, Contains(starts, 15*60))
}

func TestComputeIgnoresCancelledAppointments(t *testing.T) {
	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	appts := []models.Appointment{
		{StartMin: 10 * 60, DurationMin: 60, Status: models.AppointmentCancelled},
		{StartMin: 11 * 60, DurationMin: 30, Status: models.AppointmentNoShow},
	}
	starts := Compute(testSlot(), appts, nil, "2026-03-10", now, 30, time.UTC)

	assert.True(t, Contains(starts, 10*60))
	assert.True(t, Contains(starts, 11*60))
}

func TestComputeExcludesBlockedRanges(t *testing.T) {
	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	blocks := []models.BlockedRange{
		{SlotID: "slot-1", Date: "2026-03-10", StartMin: 12 * 60, EndMin: 13 * 60},
	}
	starts := Compute(testSlot(), nil, blocks, "2026-03-10", now, 30, time.UTC)

	assert.False(t, Contains(starts, 12*60))
	assert.False(t, Contains(starts, 12*60+30))
	assert.True(t, Contains(starts, 13*60))
}

func TestComputeStrictlyFuture(t *testing.T) {
	// 14:15 on the requested day: 14:00 is past, 14:30 is next.
	now := time.Date(2026, 3, 10, 14, 15, 0, 0, time.UTC)
	starts := Compute(testSlot(), nil, nil, "2026-03-10", now, 30, time.UTC)

	require.NotEmpty(t, starts)
	assert.Equal(t, 14*60+30, starts[0])
}

func TestComputeClosedDay(t *testing.T) {
	slot := testSlot()
	slot.BusinessHours[time.Tuesday] = models.DayHours{Closed: true}
	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)

	// 2026-03-10 is a Tuesday.
	assert.Nil(t, Compute(slot, nil, nil, "2026-03-10", now, 30, time.UTC))
}

func TestComputeUnsetHours(t *testing.T) {
	slot := testSlot()
	slot.BusinessHours[time.Tuesday] = models.DayHours{}
	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)

	assert.Nil(t, Compute(slot, nil, nil, "2026-03-10", now, 30, time.UTC))
}

func TestComputeTimezoneAnchoring(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 11:00 UTC is 08:00 in Sao Paulo: the whole business day is still ahead.
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	starts := Compute(testSlot(), nil, nil, "2026-03-10", now, 30, loc)

	require.NotEmpty(t, starts)
	assert.Equal(t, 9*60, starts[0])
}

func TestComputeIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	appts := []models.Appointment{
		{StartMin: 9 * 60, DurationMin: 90, Status: models.AppointmentConfirmed},
	}
	a := Compute(testSlot(), appts, nil, "2026-03-10", now, 30, time.UTC)
	b := Compute(testSlot(), appts, nil, "2026-03-10", now, 30, time.UTC)
	assert.Equal(t, a, b)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"09:00", "09:30"}, Labels([]int{540, 570}))
}
