package guard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookline/models"
)

type fakeReliability struct {
	counts  map[string]int
	blocked map[string]bool // phone -> global block
}

func newFakeReliability() *fakeReliability {
	return &fakeReliability{counts: map[string]int{}, blocked: map[string]bool{}}
}

func (f *fakeReliability) IncrementNoShow(_ context.Context, phone, _ string) (int, error) {
	f.counts[phone]++
	return f.counts[phone], nil
}

func (f *fakeReliability) AddBlock(_ context.Context, entry *models.BlockEntry) error {
	if entry.ProviderID == "" {
		f.blocked[entry.Phone] = true
	}
	return nil
}

func (f *fakeReliability) IsBlocked(_ context.Context, phone, _ string) (bool, error) {
	return f.blocked[phone], nil
}

func newTestGuard(t *testing.T, rel ReliabilityStore) *Guard {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Guard{Reliability: rel, Cache: client, BlockThreshold: 2}
}

func normalSlot() *models.Slot {
	return &models.Slot{ID: "slot-1", ProviderID: "prov-1", Mode: models.SlotModeNormal}
}

func TestCheckAllowsNormal(t *testing.T) {
	g := newTestGuard(t, newFakeReliability())
	d, err := g.Check(context.Background(), normalSlot(), "111")
	require.NoError(t, err)
	assert.Equal(t, Allow, d)
}

func TestCheckSilentModeDrops(t *testing.T) {
	g := newTestGuard(t, newFakeReliability())
	slot := normalSlot()
	slot.Mode = models.SlotModeSilent
	d, err := g.Check(context.Background(), slot, "111")
	require.NoError(t, err)
	assert.Equal(t, Drop, d)
}

func TestCheckAwayModeOneNoticePerHour(t *testing.T) {
	g := newTestGuard(t, newFakeReliability())
	slot := normalSlot()
	slot.Mode = models.SlotModeAway
	ctx := context.Background()

	d, err := g.Check(ctx, slot, "111")
	require.NoError(t, err)
	assert.Equal(t, AwayNotice, d, "first message in the hour gets the notice")

	d, err = g.Check(ctx, slot, "111")
	require.NoError(t, err)
	assert.Equal(t, Drop, d, "repeat messages within the hour stay silent")

	// A different client still gets their own notice.
	d, err = g.Check(ctx, slot, "222")
	require.NoError(t, err)
	assert.Equal(t, AwayNotice, d)
}

func TestCheckBlockedPhoneDropsSilently(t *testing.T) {
	rel := newFakeReliability()
	rel.blocked["111"] = true
	g := newTestGuard(t, rel)

	d, err := g.Check(context.Background(), normalSlot(), "111")
	require.NoError(t, err)
	assert.Equal(t, Drop, d)
}

func TestNoShowEscalation(t *testing.T) {
	rel := newFakeReliability()
	g := newTestGuard(t, rel)
	ctx := context.Background()

	out, err := g.IncrementNoShow(ctx, "111", "prov-1")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.False(t, out.Blocked, "first no-show is a warning, not a block")

	out, err = g.IncrementNoShow(ctx, "111", "prov-1")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.True(t, out.Blocked, "second no-show lands on the shared blacklist")

	// The third inbound message from this phone is now dropped silently.
	d, err := g.Check(ctx, normalSlot(), "111")
	require.NoError(t, err)
	assert.Equal(t, Drop, d)
}
