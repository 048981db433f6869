package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookline/models"
)

func newTestStore(t *testing.T, idleMax time.Duration) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, idleMax)
}

func TestLoadMissingReturnsFresh(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)

	sess, err := store.Load(context.Background(), "prov-1", "slot-1", "5511999990000")
	require.NoError(t, err)
	assert.Equal(t, "prov-1", sess.ProviderID)
	assert.Equal(t, "slot-1", sess.SlotID)
	assert.Equal(t, "5511999990000", sess.Phone)
	assert.Empty(t, sess.ServiceID)
}

func TestPersistLoadRoundTrip(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	sess := &models.ConversationSession{
		ProviderID:  "prov-1",
		SlotID:      "slot-1",
		Phone:       "5511999990000",
		ServiceType: "haircut",
		DurationMin: 60,
		BasePrice:   80,
		OfferedDate: "2026-03-10",
		SlotMap:     map[int]int{1: 540, 2: 570, 3: 630},
		Language:    "pt",
	}
	sess.AppendMessage("client", "oi")
	require.NoError(t, store.Persist(ctx, sess))

	loaded, err := store.Load(ctx, "prov-1", "slot-1", "5511999990000")
	require.NoError(t, err)
	assert.Equal(t, sess.ServiceType, loaded.ServiceType)
	assert.Equal(t, sess.DurationMin, loaded.DurationMin)
	assert.Equal(t, sess.SlotMap, loaded.SlotMap)
	assert.Equal(t, sess.History, loaded.History)
	assert.Equal(t, "pt", loaded.Language)
}

func TestIdleExpiryPreservesBookingMemory(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	sess := &models.ConversationSession{
		ProviderID:         "prov-1",
		SlotID:             "slot-1",
		Phone:              "5511999990000",
		ServiceType:        "massage",
		DurationMin:        90,
		Language:           "es",
		LastBookingTime:    "10:30",
		LastBookingDate:    "2026-03-10",
		LastBookingAddress: "Rua Augusta 1200",
		LastBookingSlotID:  "slot-1",
	}
	require.NoError(t, store.Persist(ctx, sess))

	// Age the row past the idle threshold.
	store.idleMax = -time.Second

	loaded, err := store.Load(ctx, "prov-1", "slot-1", "5511999990000")
	require.NoError(t, err)
	assert.Empty(t, loaded.ServiceType, "transient selection must be wiped on expiry")
	assert.Zero(t, loaded.DurationMin)
	assert.Equal(t, "10:30", loaded.LastBookingTime)
	assert.Equal(t, "2026-03-10", loaded.LastBookingDate)
	assert.Equal(t, "Rua Augusta 1200", loaded.LastBookingAddress)
	assert.Equal(t, "slot-1", loaded.LastBookingSlotID)
	assert.Equal(t, "es", loaded.Language)
}

func TestClearDeletesRow(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	sess := &models.ConversationSession{
		ProviderID:      "prov-1",
		SlotID:          "slot-1",
		Phone:           "5511999990000",
		LastBookingTime: "10:30",
	}
	require.NoError(t, store.Persist(ctx, sess))
	require.NoError(t, store.Clear(ctx, "prov-1", "slot-1", "5511999990000"))

	loaded, err := store.Load(ctx, "prov-1", "slot-1", "5511999990000")
	require.NoError(t, err)
	assert.Empty(t, loaded.LastBookingTime, "clear is a full reset, including booking memory")
}

func TestSessionsKeyedPerConversation(t *testing.T) {
	store := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	a := &models.ConversationSession{ProviderID: "prov-1", SlotID: "slot-1", Phone: "111", ServiceType: "haircut"}
	b := &models.ConversationSession{ProviderID: "prov-1", SlotID: "slot-2", Phone: "111", ServiceType: "beard"}
	require.NoError(t, store.Persist(ctx, a))
	require.NoError(t, store.Persist(ctx, b))

	la, err := store.Load(ctx, "prov-1", "slot-1", "111")
	require.NoError(t, err)
	lb, err := store.Load(ctx, "prov-1", "slot-2", "111")
	require.NoError(t, err)
	assert.Equal(t, "haircut", la.ServiceType)
	assert.Equal(t, "beard", lb.ServiceType)
}

func TestHistoryBounded(t *testing.T) {
	sess := &models.ConversationSession{}
	for i := 0; i < 50; i++ {
		sess.AppendMessage("client", "msg")
	}
	assert.Len(t, sess.History, models.MaxHistoryMessages)
}
