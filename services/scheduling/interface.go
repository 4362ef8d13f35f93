package scheduling

import (
	"context"

	"fitstudio/models"
)

// Actor is the role making a scheduling request. The role bounds which
// initial seat statuses a reservation may carry: customers only open
// confirm-required holds, coaches may enter confirmed or already
// attended seats directly.
type Actor int

const (
	ActorCustomer Actor = iota
	ActorCoach
)

// ReserveRequest carries one booking attempt into the engine.
type ReserveRequest struct {
	Actor      Actor
	BizID      string
	CoachID    string
	CustomerID string
	Date       int
	Start      int
	End        int
	Priority   models.SeatPriority
	Status     models.SeatStatus
	Note       string
}

// Engine owns every seat mutation for a coach's day and is the sole
// place conflict rules are enforced.
type Engine interface {
	ListSeats(ctx context.Context, coachID string, date int) ([]models.Seat, error)
	FindConflicts(ctx context.Context, coachID string, date int, iv Interval, excludeSeatID string) ([]models.Seat, error)
	AddBreak(ctx context.Context, bizID, coachID string, date int, iv Interval, note string) (*models.Seat, error)
	RemoveBreak(ctx context.Context, coachID string, date int, iv Interval) error
	Reserve(ctx context.Context, req ReserveRequest) (*models.Seat, error)
	Confirm(ctx context.Context, seatID string) error
	Cancel(ctx context.Context, seatID string) error
	CheckIn(ctx context.Context, seatID string) error
}

// ReportInvalidator signals the cache layer after mutations that touch
// denormalized views. Staleness beyond the signal is the cache's
// problem, not the engine's.
type ReportInvalidator interface {
	CoachReport(ctx context.Context, coachID string, date int)
	CustomerProfile(ctx context.Context, customerID string)
}
