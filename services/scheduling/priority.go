// File: services/scheduling/priority.go
package scheduling

import (
	"context"
	"errors"
	"fmt"

	seatRepo "fitstudio/database/repository/seat"
	traineeRepo "fitstudio/database/repository/trainee"
	"fitstudio/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// experienceHoldCap is the per-coach-per-day ceiling of trial holds
// shown as bookable. It is enforced at display time only; a race past
// it is accepted and resolved by the coach at confirmation.
const experienceHoldCap = 2

// Resolver decides whether an incoming booking is a paid private
// session or a trial, and whether a trial is currently allowed at all.
type Resolver interface {
	// Resolve returns the priority for the customer booking this coach.
	// A trial attempt while another trial is outstanding anywhere fails
	// with ErrExperienceLimit.
	Resolve(ctx context.Context, coachID, customerID string) (models.SeatPriority, error)
	// ExperienceOpen reports whether trial slots should still be shown
	// for the coach's day.
	ExperienceOpen(ctx context.Context, coachID string, date int) (bool, error)
}

// DefaultResolver is the production implementation.
type DefaultResolver struct {
	Trainees traineeRepo.TraineeRepository
	Seats    seatRepo.SeatRepository
}

func (r *DefaultResolver) Resolve(ctx context.Context, coachID, customerID string) (models.SeatPriority, error) {
	trainee, err := r.Trainees.GetByCoachCustomer(ctx, coachID, customerID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("get trainee relation: %w", err)
	}
	if trainee != nil && trainee.IsBind {
		return models.PriorityPrivate, nil
	}

	// One outstanding trial system-wide: any live hold or confirmed
	// seat, with any coach, blocks a new experience booking.
	holds, err := r.Seats.CountCustomerHolds(ctx, customerID, []models.SeatStatus{
		models.SeatStatusConfirmRequired,
		models.SeatStatusConfirmed,
	})
	if err != nil {
		return 0, fmt.Errorf("count customer holds: %w", err)
	}
	if holds > 0 {
		return 0, ErrExperienceLimit
	}
	return models.PriorityExperience, nil
}

func (r *DefaultResolver) ExperienceOpen(ctx context.Context, coachID string, date int) (bool, error) {
	n, err := r.Seats.CountExperienceHolds(ctx, coachID, date)
	if err != nil {
		return false, fmt.Errorf("count experience holds: %w", err)
	}
	return n < experienceHoldCap, nil
}
