// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"

	"bookline/database"
	"bookline/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SlotRepository defines access to slots and their blocked ranges.
type SlotRepository interface {
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	GetByProviderID(ctx context.Context, providerID string) ([]models.Slot, error)
	Upsert(ctx context.Context, slot *models.Slot) error
	SetMode(ctx context.Context, slotID, mode string) error

	GetBlockedRanges(ctx context.Context, slotID, date string) ([]models.BlockedRange, error)
	AddBlockedRange(ctx context.Context, block *models.BlockedRange) error
	DeleteBlockedRange(ctx context.Context, blockID string) error

	EnsureIndexes() error
}

type mongoSlotRepo struct {
	slotColl    *mongo.Collection
	blockedColl *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database("bookline")
	return &mongoSlotRepo{
		slotColl:    db.Collection("slots"),
		blockedColl: db.Collection("blocked_ranges"),
	}
}
