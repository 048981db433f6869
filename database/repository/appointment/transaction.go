package appointmentRepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bookline/models"
)

// overlapFilter matches active appointments whose [start, start+duration)
// interval intersects [startMin, endMin) on the same slot and date.
func overlapFilter(slotID, date string, startMin, endMin int) bson.M {
	return bson.M{
		"slot_id": slotID,
		"date":    date,
		"status":  bson.M{"$in": bson.A{models.AppointmentConfirmed, models.AppointmentCompleted}},
		"$expr": bson.M{
			"$and": bson.A{
				bson.M{"$lt": bson.A{"$start_min", endMin}},
				bson.M{"$gt": bson.A{bson.M{"$add": bson.A{"$start_min", "$duration_min"}}, startMin}},
			},
		},
	}
}

func (r *mongoAppointmentRepo) CommitTransactionally(ctx context.Context, appt *models.Appointment) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		count, err := r.coll.CountDocuments(sc, overlapFilter(appt.SlotID, appt.Date, appt.StartMin, appt.EndMin()))
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if count > 0 {
			return ErrSlotConflict
		}
		if _, err := r.coll.InsertOne(sc, appt); err != nil {
			// The partial unique index on (slot_id, date, start_min) is the
			// second line of defense against the exact-start race.
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlotConflict
			}
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrSlotConflict {
			return ErrSlotConflict
		}
		return fmt.Errorf("appointment transaction failed: %w", err)
	}

	return nil
}
