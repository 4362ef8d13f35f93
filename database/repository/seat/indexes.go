// FILE: database/repository/seat/indexes.go
package seatRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the seats collection.
func (r *mongoSeatRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on seat ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary query pattern: one coach's day
		{
			Keys:    bson.D{{Key: "coach_id", Value: 1}, {Key: "date", Value: 1}, {Key: "valid", Value: 1}},
			Options: options.Index().SetName("coach_date_valid_idx"),
		},
		// Customer hold lookups for the experience cap
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "valid", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("customer_valid_status_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create seat indexes: %w", err)
	}
	return nil
}
