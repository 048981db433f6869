// FILE: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slot collections.
func (r *mongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slotModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}},
			Options: options.Index().SetName("provider_idx"),
		},
	}
	if _, err := r.slotColl.Indexes().CreateMany(ctx, slotModels); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}

	blockedModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slot_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("slot_date_idx"),
		},
	}
	if _, err := r.blockedColl.Indexes().CreateMany(ctx, blockedModels); err != nil {
		return fmt.Errorf("failed to create blocked range indexes: %w", err)
	}
	return nil
}
