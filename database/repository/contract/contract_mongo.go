// File: database/repository/contract/contract_mongo.go
package contractRepo

import (
	"context"
	"fmt"
	"time"

	"fitstudio/database"
	"fitstudio/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContractRepository resolves the credit line for an attendance and
// applies guarded counter moves.
type ContractRepository interface {
	// FindOldestWithCredit returns the oldest still-valid content line
	// with remaining credit for a beneficiary of the given coach, or
	// mongo.ErrNoDocuments.
	FindOldestWithCredit(ctx context.Context, customerID, coachID string) (*models.ContractContent, error)
	GetContentByID(ctx context.Context, id string) (*models.ContractContent, error)
	// AdjustAttended moves the consumed counter by delta, guarded so it
	// stays within [0, total].
	AdjustAttended(ctx context.Context, contentID string, delta int) error
}

type mongoContractRepo struct {
	contracts *mongo.Collection
	contents  *mongo.Collection
}

// NewMongoContractRepo constructs a new MongoDB ContractRepository.
func NewMongoContractRepo() ContractRepository {
	db := database.DB()
	return &mongoContractRepo{
		contracts: db.Collection("contracts"),
		contents:  db.Collection("contract_contents"),
	}
}

func (r *mongoContractRepo) FindOldestWithCredit(ctx context.Context, customerID, coachID string) (*models.ContractContent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Contracts may cover several beneficiaries; collect the ones this
	// customer can draw from first.
	cursor, err := r.contracts.Find(ctx, bson.M{"customer_ids": customerID, "valid": true})
	if err != nil {
		return nil, err
	}
	var contracts []models.Contract
	if err := cursor.All(ctx, &contracts); err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	ids := make([]string, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.ID)
	}

	var content models.ContractContent
	err = r.contents.FindOne(ctx,
		bson.M{
			"contract_id": bson.M{"$in": ids},
			"coach_id":    coachID,
			"valid":       true,
			"$expr":       bson.M{"$gt": bson.A{"$total", "$attended"}},
		},
		options.FindOne().SetSort(bson.D{{Key: "signed_at", Value: 1}}),
	).Decode(&content)
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *mongoContractRepo) GetContentByID(ctx context.Context, id string) (*models.ContractContent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var content models.ContractContent
	if err := r.contents.FindOne(ctx, bson.M{"id": id}).Decode(&content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *mongoContractRepo) AdjustAttended(ctx context.Context, contentID string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": contentID}
	if delta > 0 {
		filter["$expr"] = bson.M{"$lte": bson.A{bson.M{"$add": bson.A{"$attended", delta}}, "$total"}}
	} else if delta < 0 {
		filter["attended"] = bson.M{"$gte": -delta}
	}
	res, err := r.contents.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"attended": delta}})
	if err != nil {
		return fmt.Errorf("failed to adjust attended on content %s: %w", contentID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
