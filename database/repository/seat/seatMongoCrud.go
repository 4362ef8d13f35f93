// File: database/repository/seat/seatMongoCrud.go
package seatRepo

import (
	"context"
	"fmt"
	"time"

	"fitstudio/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoSeatRepo) Insert(ctx context.Context, seat *models.Seat) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if seat.ID == "" {
		seat.ID = uuid.New().String()
	}
	now := time.Now()
	seat.CreatedAt = now
	seat.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, seat); err != nil {
		return fmt.Errorf("failed to insert seat: %w", err)
	}
	return nil
}

func (r *mongoSeatRepo) GetByID(ctx context.Context, id string) (*models.Seat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var seat models.Seat
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&seat); err != nil {
		return nil, err
	}
	return &seat, nil
}

// TransitionStatus is the only write path for booking-state changes, so
// the from-status guard doubles as the idempotency barrier.
func (r *mongoSeatRepo) TransitionStatus(ctx context.Context, id string, from []models.SeatStatus, to models.SeatStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": to, "updated_at": at}
	switch to {
	case models.SeatStatusConfirmed:
		set["confirmed_at"] = at
	case models.SeatStatusAttended:
		set["checked_in_at"] = at
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "valid": true, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to transition seat %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSeatRepo) Invalidate(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "valid": true},
		bson.M{"$set": bson.M{"valid": false, "canceled_at": at, "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate seat %s: %w", id, err)
	}
	return nil
}

func (r *mongoSeatRepo) UpdateWindow(ctx context.Context, id string, start, end int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.SeatStatusBreak},
		bson.M{"$set": bson.M{"start": start, "end": end, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to reshape break %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSeatRepo) DeleteBreak(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "status": models.SeatStatusBreak})
	if err != nil {
		return fmt.Errorf("failed to delete break %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
