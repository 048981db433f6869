package slotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookline/models"
)

func (r *mongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	err := r.slotColl.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("slot %s not found", slotID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) GetByProviderID(ctx context.Context, providerID string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.slotColl.Find(ctx, bson.M{"provider_id": providerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) Upsert(ctx context.Context, slot *models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if slot.Mode == "" {
		slot.Mode = models.SlotModeNormal
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.slotColl.ReplaceOne(ctx, bson.M{"id": slot.ID}, slot, opts); err != nil {
		return fmt.Errorf("failed to upsert slot %s: %w", slot.ID, err)
	}
	return nil
}

func (r *mongoSlotRepo) SetMode(ctx context.Context, slotID, mode string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.slotColl.UpdateOne(ctx, bson.M{"id": slotID}, bson.M{"$set": bson.M{"mode": mode}})
	if err != nil {
		return fmt.Errorf("failed to set mode on slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSlotRepo) GetBlockedRanges(ctx context.Context, slotID, date string) ([]models.BlockedRange, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.blockedColl.Find(ctx, bson.M{"slot_id": slotID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blocked ranges: %w", err)
	}
	defer cursor.Close(ctx)

	var blocks []models.BlockedRange
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *mongoSlotRepo) AddBlockedRange(ctx context.Context, block *models.BlockedRange) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	block.CreatedAt = time.Now()
	if _, err := r.blockedColl.InsertOne(ctx, block); err != nil {
		return fmt.Errorf("failed to insert blocked range: %w", err)
	}
	return nil
}

func (r *mongoSlotRepo) DeleteBlockedRange(ctx context.Context, blockID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.blockedColl.DeleteOne(ctx, bson.M{"id": blockID})
	if err != nil {
		return fmt.Errorf("failed to delete blocked range %s: %w", blockID, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
