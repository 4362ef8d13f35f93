// File: database/repository/trainee/trainee_mongo.go
package traineeRepo

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

// TraineeRepository persists coach-customer relations and the legacy
// lesson counters.
type TraineeRepository interface {
	Create(ctx context.Context, t *models.Trainee) error
	GetByID(ctx context.Context, id string) (*models.Trainee, error)
	GetByCoachCustomer(ctx context.Context, coachID, customerID string) (*models.Trainee, error)
	ListByCoach(ctx context.Context, coachID string) ([]models.Trainee, error)
	// AdjustLessons applies signed deltas to the legacy counters. The
	// guard keeps attended within [0, total].
	AdjustLessons(ctx context.Context, id string, totalDelta, attendedDelta int) error
}

type mongoTraineeRepo struct {
	coll *mongo.Collection
}

// NewMongoTraineeRepo constructs a new MongoDB TraineeRepository.
func NewMongoTraineeRepo() TraineeRepository {
	return &mongoTraineeRepo{coll: database.DB().Collection("trainees")}
}

func (r *mongoTraineeRepo) Create(ctx context.Context, t *models.Trainee) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to insert trainee: %w", err)
	}
	return nil
}

func (r *mongoTraineeRepo) GetByID(ctx context.Context, id string) (*models.Trainee, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.Trainee
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *mongoTraineeRepo) GetByCoachCustomer(ctx context.Context, coachID, customerID string) (*models.Trainee, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.Trainee
	err := r.coll.FindOne(ctx, bson.M{"coach_id": coachID, "customer_id": customerID}).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *mongoTraineeRepo) ListByCoach(ctx context.Context, coachID string) ([]models.Trainee, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"coach_id": coachID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trainees []models.Trainee
	if err := cursor.All(ctx, &trainees); err != nil {
		return nil, err
	}
	return trainees, nil
}

func (r *mongoTraineeRepo) AdjustLessons(ctx context.Context, id string, totalDelta, attendedDelta int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if attendedDelta > 0 {
		// Never count attendance past the purchased total.
		filter["$expr"] = bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$attended_lessons", attendedDelta}}, "$total_lessons",
		}}
	} else if attendedDelta < 0 {
		filter["attended_lessons"] = bson.M{"$gte": -attendedDelta}
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"total_lessons": totalDelta, "attended_lessons": attendedDelta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to adjust lessons for trainee %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
