// File: database/repository/trigger/trigger_mongo.go
package triggerRepo

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

// TriggerRepository persists weekly recurring-booking rules.
type TriggerRepository interface {
	Create(ctx context.Context, t *models.SeatTrigger) error
	Deactivate(ctx context.Context, id string) error
	ListByCoach(ctx context.Context, coachID string, activeOnly bool) ([]models.SeatTrigger, error)
	ListActive(ctx context.Context) ([]models.SeatTrigger, error)
	// MarkMaterialized records the last date a seat was generated for,
	// so a rule fires at most once per occurrence.
	MarkMaterialized(ctx context.Context, id string, date int) error
}

type mongoTriggerRepo struct {
	coll *mongo.Collection
}

// NewMongoTriggerRepo constructs a new MongoDB TriggerRepository.
func NewMongoTriggerRepo() TriggerRepository {
	return &mongoTriggerRepo{coll: database.DB().Collection("seat_triggers")}
}

func (r *mongoTriggerRepo) Create(ctx context.Context, t *models.SeatTrigger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Active = true
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to insert trigger: %w", err)
	}
	return nil
}

func (r *mongoTriggerRepo) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to deactivate trigger %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoTriggerRepo) ListByCoach(ctx context.Context, coachID string, activeOnly bool) ([]models.SeatTrigger, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"coach_id": coachID}
	if activeOnly {
		filter["active"] = true
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var triggers []models.SeatTrigger
	if err := cursor.All(ctx, &triggers); err != nil {
		return nil, err
	}
	return triggers, nil
}

func (r *mongoTriggerRepo) ListActive(ctx context.Context) ([]models.SeatTrigger, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var triggers []models.SeatTrigger
	if err := cursor.All(ctx, &triggers); err != nil {
		return nil, err
	}
	return triggers, nil
}

func (r *mongoTriggerRepo) MarkMaterialized(ctx context.Context, id string, date int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"last_date": date, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to mark trigger %s materialized: %w", id, err)
	}
	return nil
}
