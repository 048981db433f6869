// FILE: database/repository/appointment/indexes.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookline/models"
)

// EnsureIndexes creates the necessary indexes on the appointments collection.
func (r *mongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary query pattern: all active appointments of a slot on a day.
		{
			Keys:    bson.D{{Key: "slot_id", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("slot_date_status_idx"),
		},
		{
			Keys:    bson.D{{Key: "slot_id", Value: 1}, {Key: "phone", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("slot_phone_date_idx"),
		},
		// Second line of defense against concurrent commits for the same
		// start time: only one confirmed appointment per (slot, date, start).
		{
			Keys: bson.D{{Key: "slot_id", Value: 1}, {Key: "date", Value: 1}, {Key: "start_min", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_confirmed_start").
				SetPartialFilterExpression(bson.M{"status": models.AppointmentConfirmed}),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
