// File: database/repository/coach/coach_mongo.go
package coachRepo

import (
	"context"
	"fmt"
	"time"

	"fitstudio/database"
	"fitstudio/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CoachRepository persists coach accounts.
type CoachRepository interface {
	Create(ctx context.Context, c *models.Coach) error
	GetByID(ctx context.Context, id string) (*models.Coach, error)
	GetByPhone(ctx context.Context, bizID, phone string) (*models.Coach, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

type mongoCoachRepo struct {
	coll *mongo.Collection
}

// NewMongoCoachRepo constructs a new MongoDB CoachRepository.
func NewMongoCoachRepo() CoachRepository {
	return &mongoCoachRepo{coll: database.DB().Collection("coaches")}
}

func (r *mongoCoachRepo) Create(ctx context.Context, c *models.Coach) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert coach: %w", err)
	}
	return nil
}

func (r *mongoCoachRepo) GetByID(ctx context.Context, id string) (*models.Coach, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Coach
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoCoachRepo) GetByPhone(ctx context.Context, bizID, phone string) (*models.Coach, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Coach
	if err := r.coll.FindOne(ctx, bson.M{"biz_id": bizID, "phone": phone}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoCoachRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"fcm_token": token, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to update coach fcm token: %w", err)
	}
	return nil
}
