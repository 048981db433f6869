package reliabilityRepo

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

func (r *mongoReliabilityRepo) IncrementNoShow(ctx context.Context, phone, providerID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	record := models.NoShowRecord{
		ID:         uuid.New().String(),
		Phone:      phone,
		ProviderID: providerID,
		CreatedAt:  now,
	}
	if _, err := r.noShowColl.InsertOne(ctx, record); err != nil {
		return 0, fmt.Errorf("failed to append no-show record: %w", err)
	}

	filter := bson.M{"phone": phone}
	update := bson.M{
		"$inc": bson.M{"no_show_count": 1},
		"$set": bson.M{"last_no_show_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec models.ReliabilityRecord
	if err := r.recordColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		return 0, fmt.Errorf("failed to upsert reliability record: %w", err)
	}
	return rec.NoShowCount, nil
}

func (r *mongoReliabilityRepo) GetRecord(ctx context.Context, phone string) (*models.ReliabilityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.ReliabilityRecord
	err := r.recordColl.FindOne(ctx, bson.M{"phone": phone}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return &models.ReliabilityRecord{Phone: phone}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reliability record: %w", err)
	}
	return &rec, nil
}

func (r *mongoReliabilityRepo) ResetRecord(ctx context.Context, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.recordColl.UpdateOne(ctx, bson.M{"phone": phone},
		bson.M{"$set": bson.M{"no_show_count": 0}})
	if err != nil {
		return fmt.Errorf("failed to reset reliability record: %w", err)
	}
	return nil
}

func (r *mongoReliabilityRepo) AddBlock(ctx context.Context, entry *models.BlockEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()

	// Merge-only: re-blocking an already blocked phone is a no-op.
	filter := bson.M{"phone": entry.Phone, "provider_id": entry.ProviderID}
	update := bson.M{"$setOnInsert": entry}
	opts := options.Update().SetUpsert(true)
	if _, err := r.blockColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add block entry: %w", err)
	}
	return nil
}

func (r *mongoReliabilityRepo) RemoveBlock(ctx context.Context, phone, providerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.blockColl.DeleteMany(ctx, bson.M{"phone": phone, "provider_id": providerID}); err != nil {
		return fmt.Errorf("failed to remove block entry: %w", err)
	}
	return nil
}

func (r *mongoReliabilityRepo) IsBlocked(ctx context.Context, phone, providerID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"phone":       phone,
		"provider_id": bson.M{"$in": bson.A{providerID, ""}},
	}
	count, err := r.blockColl.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check block entries: %w", err)
	}
	return count > 0, nil
}

func (r *mongoReliabilityRepo) ListBlocks(ctx context.Context, providerID string) ([]models.BlockEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"provider_id": bson.M{"$in": bson.A{providerID, ""}}}
	cursor, err := r.blockColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list block entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.BlockEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureIndexes creates the necessary indexes on the reliability collections.
func (r *mongoReliabilityRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.recordColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_phone"),
	}); err != nil {
		return fmt.Errorf("failed to create reliability record index: %w", err)
	}
	if _, err := r.blockColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}, {Key: "provider_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_phone_provider"),
	}); err != nil {
		return fmt.Errorf("failed to create block entry index: %w", err)
	}
	return nil
}
