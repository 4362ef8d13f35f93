// File: database/repository/seat/seatMongoQueries.go
package seatRepo

import (
	"context"
	"time"

	"fitstudio/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSeatRepo) ListByCoachDate(ctx context.Context, coachID string, date int, onlyValid bool) ([]models.Seat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"coach_id": coachID, "date": date}
	if onlyValid {
		filter["valid"] = true
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var seats []models.Seat
	if err := cursor.All(ctx, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *mongoSeatRepo) CountCustomerHolds(ctx context.Context, customerID string, statuses []models.SeatStatus) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"customer_id": customerID,
		"valid":       true,
		"status":      bson.M{"$in": statuses},
	})
	return int(n), err
}

func (r *mongoSeatRepo) CountExperienceHolds(ctx context.Context, coachID string, date int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"coach_id": coachID,
		"date":     date,
		"valid":    true,
		"status":   models.SeatStatusConfirmRequired,
		"priority": models.PriorityExperience,
	})
	return int(n), err
}
