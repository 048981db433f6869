// File: services/guard/guard.go
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"bookline/models"
	"bookline/utils"
)

// Decision is the gate verdict for one inbound message.
type Decision int

const (
	// Allow lets the message into the pipeline.
	Allow Decision = iota
	// Drop discards the message with no reply at all. Silence, not an
	// error: a reply would reveal the bot's presence.
	Drop
	// AwayNotice discards the message but owes the client a single
	// away-mode notice.
	AwayNotice
)

const awayNoticePrefix = "away:"

// ReliabilityStore is the slice of the reliability repository the guard
// uses.
type ReliabilityStore interface {
	IncrementNoShow(ctx context.Context, phone, providerID string) (int, error)
	AddBlock(ctx context.Context, entry *models.BlockEntry) error
	IsBlocked(ctx context.Context, phone, providerID string) (bool, error)
}

// Guard gates all inbound processing on availability mode, block entries
// and no-show history.
type Guard struct {
	Reliability    ReliabilityStore
	Cache          *redis.Client // away-notice throttle keys
	BlockThreshold int
}

// Check gates one inbound message. Availability-mode gates run first, then
// block entries.
func (g *Guard) Check(ctx context.Context, slot *models.Slot, phone string) (Decision, error) {
	switch slot.Mode {
	case models.SlotModeSilent:
		return Drop, nil
	case models.SlotModeAway:
		first, err := g.claimAwayNotice(ctx, slot.ID, phone)
		if err != nil {
			return Drop, err
		}
		if first {
			return AwayNotice, nil
		}
		return Drop, nil
	}

	blocked, err := g.Reliability.IsBlocked(ctx, phone, slot.ProviderID)
	if err != nil {
		return Drop, fmt.Errorf("block lookup: %w", err)
	}
	if blocked {
		return Drop, nil
	}
	return Allow, nil
}

// claimAwayNotice reports whether this client is owed the rolling-hour
// away notice, claiming it atomically.
func (g *Guard) claimAwayNotice(ctx context.Context, slotID, phone string) (bool, error) {
	key := fmt.Sprintf("%s%s:%s", awayNoticePrefix, slotID, phone)
	ok, err := g.Cache.SetNX(ctx, key, "1", time.Hour).Result()
	if err != nil {
		return false, fmt.Errorf("away notice claim: %w", err)
	}
	return ok, nil
}

// NoShowOutcome describes the escalation after recording a no-show.
type NoShowOutcome struct {
	Count   int
	Blocked bool // reached the threshold and landed on the shared blacklist
}

// IncrementNoShow appends a no-show and escalates to an auto-block on the
// shared cross-provider blacklist at the threshold. The caller sends a
// warning below threshold and a terminal notice at it.
func (g *Guard) IncrementNoShow(ctx context.Context, phone, providerID string) (NoShowOutcome, error) {
	count, err := g.Reliability.IncrementNoShow(ctx, phone, providerID)
	if err != nil {
		return NoShowOutcome{}, fmt.Errorf("increment no-show: %w", err)
	}

	out := NoShowOutcome{Count: count}
	if count >= g.BlockThreshold {
		entry := &models.BlockEntry{
			Phone:  phone,
			Reason: fmt.Sprintf("auto-block after %d no-shows", count),
			// Empty ProviderID: shared cross-provider blacklist.
		}
		if err := g.Reliability.AddBlock(ctx, entry); err != nil {
			return out, fmt.Errorf("auto-block: %w", err)
		}
		out.Blocked = true
		utils.GetLogger().Info("phone auto-blocked for no-shows",
			zap.String("phone", phone), zap.Int("count", count))
	}
	return out, nil
}
