package notification

import (
	"context"

	"fitstudio/models"
)

// Dispatcher queues seat-event pushes. Dispatch is fire-and-forget:
// callers log failures and never roll back the seat mutation that
// produced the event.
type Dispatcher interface {
	CustomerConfirmed(ctx context.Context, seat *models.Seat) error
	CustomerCancelled(ctx context.Context, seat *models.Seat) error
	CoachConfirmRequired(ctx context.Context, seat *models.Seat) error
}
