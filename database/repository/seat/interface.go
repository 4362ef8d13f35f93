// File: database/repository/seat/interface.go
package seatRepo

import (
	"context"
	"fmt"
	"time"

	"fitstudio/database"
	"fitstudio/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SeatRepository persists the seats of one coach's day. Listing is the
// basis of every conflict check, so it always reads the authoritative
// collection, never a cache.
type SeatRepository interface {
	Insert(ctx context.Context, seat *models.Seat) error
	GetByID(ctx context.Context, id string) (*models.Seat, error)
	// ListByCoachDate returns seats for the coach/day ascending by start.
	// With onlyValid it skips cancelled seats.
	ListByCoachDate(ctx context.Context, coachID string, date int, onlyValid bool) ([]models.Seat, error)
	// TransitionStatus moves a seat from one of the expected statuses to
	// the target and stamps the transition time. It fails with
	// mongo.ErrNoDocuments when the seat is no longer in an expected
	// status, which keeps credit deduction at-most-once.
	TransitionStatus(ctx context.Context, id string, from []models.SeatStatus, to models.SeatStatus, at time.Time) error
	// Invalidate cancels a seat: Valid=false plus CanceledAt. Calling it
	// on an already-invalid seat is a no-op.
	Invalidate(ctx context.Context, id string, at time.Time) error

	// Break seats are coach-private blocks and may be reshaped in place.
	UpdateWindow(ctx context.Context, id string, start, end int) error
	DeleteBreak(ctx context.Context, id string) error

	// CountCustomerHolds counts valid seats held by the customer in any
	// of the given statuses, across all coaches.
	CountCustomerHolds(ctx context.Context, customerID string, statuses []models.SeatStatus) (int, error)
	// CountExperienceHolds counts valid experience seats awaiting
	// confirmation for the coach/day.
	CountExperienceHolds(ctx context.Context, coachID string, date int) (int, error)
}

type mongoSeatRepo struct {
	coll *mongo.Collection
}

// NewMongoSeatRepo constructs a new MongoDB SeatRepository.
func NewMongoSeatRepo() SeatRepository {
	repo := &mongoSeatRepo{coll: database.DB().Collection("seats")}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create seat indexes: %v\n", err)
	}
	return repo
}
