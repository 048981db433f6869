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

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, apptID string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": apptID}).Decode(&appt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", apptID, err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) GetActiveByDate(ctx context.Context, slotID, date string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"slot_id": slotID,
		"date":    date,
		"status":  bson.M{"$in": bson.A{models.AppointmentConfirmed, models.AppointmentCompleted}},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_min", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments for slot %s on %s: %w", slotID, date, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) ListByProvider(ctx context.Context, providerID string, limit int64) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_min", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, bson.M{"provider_id": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) UpdateStatus(ctx context.Context, apptID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": apptID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update status of appointment %s: %w", apptID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoAppointmentRepo) FindUpcomingByPhone(ctx context.Context, slotID, phone string, now time.Time, loc *time.Location) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	today := now.In(loc).Format("2006-01-02")
	filter := bson.M{
		"slot_id": slotID,
		"phone":   phone,
		"status":  models.AppointmentConfirmed,
		"date":    bson.M{"$gte": today},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_min", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to look up upcoming appointment: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	// Same-day rows can already be in the past; compare instants.
	for i := range appts {
		start, err := appts[i].StartTime(loc)
		if err != nil {
			continue
		}
		if start.After(now) {
			return &appts[i], nil
		}
	}
	return nil, nil
}

func (r *mongoAppointmentRepo) DueForReminder(ctx context.Context, dates []string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":        models.AppointmentConfirmed,
		"reminder_sent": false,
		"date":          bson.M{"$in": dates},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminder candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) MarkReminderSent(ctx context.Context, apptID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": apptID, "reminder_sent": false},
		bson.M{"$set": bson.M{"reminder_sent": true}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent for %s: %w", apptID, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoAppointmentRepo) ClearReminderSent(ctx context.Context, apptID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"id": apptID},
		bson.M{"$set": bson.M{"reminder_sent": false}},
	); err != nil {
		return fmt.Errorf("failed to clear reminder claim for %s: %w", apptID, err)
	}
	return nil
}
