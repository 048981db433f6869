// File: services/session/store.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookline/models"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "conv:"

// persistTTL is a garbage-collection backstop; logical expiry is the idle
// threshold applied on load, which must not wipe booking memory.
const persistTTL = 30 * 24 * time.Hour

// Store persists per-(provider, slot, phone) conversation state. All
// mutation is read-modify-write by the single handler that owns the
// conversation key; the store itself does no locking.
type Store struct {
	client  *redis.Client
	idleMax time.Duration
}

// NewStore builds a session store with the given idle threshold.
func NewStore(client *redis.Client, idleMax time.Duration) *Store {
	return &Store{client: client, idleMax: idleMax}
}

func key(providerID, slotID, phone string) string {
	return fmt.Sprintf("%s%s:%s:%s", sessionPrefix, providerID, slotID, phone)
}

// Load returns the persisted session, or a fresh zero-value session when
// none exists. A session idle past the threshold comes back with its
// transient selection wiped but its last-booking memory intact, so later
// "where/when" questions need no re-explanation.
func (s *Store) Load(ctx context.Context, providerID, slotID, phone string) (*models.ConversationSession, error) {
	data, err := s.client.Get(ctx, key(providerID, slotID, phone)).Result()
	if err == redis.Nil {
		return fresh(providerID, slotID, phone), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess models.ConversationSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	if time.Since(sess.UpdatedAt) > s.idleMax {
		expired := fresh(providerID, slotID, phone)
		expired.Language = sess.Language
		expired.LastBookingTime = sess.LastBookingTime
		expired.LastBookingDate = sess.LastBookingDate
		expired.LastBookingAddress = sess.LastBookingAddress
		expired.LastBookingSlotID = sess.LastBookingSlotID
		return expired, nil
	}
	return &sess, nil
}

// Persist stores the full session with a refreshed timestamp. Callers must
// complete this before sending the corresponding outbound reply.
func (s *Store) Persist(ctx context.Context, sess *models.ConversationSession) error {
	sess.UpdatedAt = time.Now()
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(sess.ProviderID, sess.SlotID, sess.Phone), b, persistTTL).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear deletes the session row. Administrative reset only.
func (s *Store) Clear(ctx context.Context, providerID, slotID, phone string) error {
	if err := s.client.Del(ctx, key(providerID, slotID, phone)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func fresh(providerID, slotID, phone string) *models.ConversationSession {
	return &models.ConversationSession{
		ProviderID: providerID,
		SlotID:     slotID,
		Phone:      phone,
	}
}
