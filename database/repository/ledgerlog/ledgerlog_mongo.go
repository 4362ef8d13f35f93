// File: database/repository/ledgerlog/ledgerlog_mongo.go
package ledgerlogRepo

import (
	"context"
	"fmt"
	"time"

	"fitstudio/database"
	"fitstudio/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LedgerLogRepository is the append-only credit-movement log. Entries
// are never updated or deleted.
type LedgerLogRepository interface {
	Append(ctx context.Context, entry *models.LedgerEntry) error
	ListByTrainee(ctx context.Context, traineeID string) ([]models.LedgerEntry, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.LedgerEntry, error)
	// FindAttendEntry locates the deduction recorded for a seat, if any,
	// so a cancellation refunds the same contract line it was drawn from.
	FindAttendEntry(ctx context.Context, seatID string) (*models.LedgerEntry, error)
	// FindRefundEntry locates a refund already recorded for a seat, so a
	// repeated cancellation never refunds the same attendance twice.
	FindRefundEntry(ctx context.Context, seatID string) (*models.LedgerEntry, error)
}

type mongoLedgerLogRepo struct {
	coll *mongo.Collection
}

// NewMongoLedgerLogRepo constructs a new MongoDB LedgerLogRepository.
func NewMongoLedgerLogRepo() LedgerLogRepository {
	return &mongoLedgerLogRepo{coll: database.DB().Collection("ledger_entries")}
}

func (r *mongoLedgerLogRepo) Append(ctx context.Context, entry *models.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *mongoLedgerLogRepo) ListByTrainee(ctx context.Context, traineeID string) ([]models.LedgerEntry, error) {
	return r.list(ctx, bson.M{"trainee_id": traineeID})
}

func (r *mongoLedgerLogRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.LedgerEntry, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

func (r *mongoLedgerLogRepo) list(ctx context.Context, filter bson.M) ([]models.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoLedgerLogRepo) FindAttendEntry(ctx context.Context, seatID string) (*models.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.LedgerEntry
	err := r.coll.FindOne(ctx,
		bson.M{"seat_id": seatID, "kind": models.LedgerEntryAttend},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *mongoLedgerLogRepo) FindRefundEntry(ctx context.Context, seatID string) (*models.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.LedgerEntry
	err := r.coll.FindOne(ctx,
		bson.M{"seat_id": seatID, "kind": models.LedgerEntryRefund},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
