// File: database/repository/reliability/interface.go
package reliabilityRepo

import (
	"context"

	"bookline/database"
	"bookline/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReliabilityRepository tracks no-show counters and block entries. The
// block collection is the only cross-provider shared state and is
// append/merge-only.
type ReliabilityRepository interface {
	// IncrementNoShow appends a no-show record and upserts the phone's
	// counter, returning the new cumulative count.
	IncrementNoShow(ctx context.Context, phone, providerID string) (int, error)
	GetRecord(ctx context.Context, phone string) (*models.ReliabilityRecord, error)
	ResetRecord(ctx context.Context, phone string) error

	AddBlock(ctx context.Context, entry *models.BlockEntry) error
	RemoveBlock(ctx context.Context, phone, providerID string) error
	// IsBlocked reports whether the phone is blocked for the provider,
	// either provider-scoped or on the shared global blacklist.
	IsBlocked(ctx context.Context, phone, providerID string) (bool, error)
	ListBlocks(ctx context.Context, providerID string) ([]models.BlockEntry, error)

	EnsureIndexes() error
}

type mongoReliabilityRepo struct {
	recordColl *mongo.Collection
	noShowColl *mongo.Collection
	blockColl  *mongo.Collection
}

// NewMongoReliabilityRepo constructs a new MongoDB ReliabilityRepository.
func NewMongoReliabilityRepo() ReliabilityRepository {
	db := database.MongoClient.Database("bookline")
	return &mongoReliabilityRepo{
		recordColl: db.Collection("reliability_records"),
		noShowColl: db.Collection("no_show_records"),
		blockColl:  db.Collection("block_entries"),
	}
}
