package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"fitstudio/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeSeatNotice is the asynq task type for seat-event pushes.
const TypeSeatNotice = "notify:seat"

// DefaultDispatcher enqueues seat notices onto the redis-backed task
// queue; the worker in cron/ delivers them.
type DefaultDispatcher struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewDefaultDispatcher(client *asynq.Client, logger *zap.Logger) *DefaultDispatcher {
	return &DefaultDispatcher{Client: client, Logger: logger}
}

func (d *DefaultDispatcher) CustomerConfirmed(ctx context.Context, seat *models.Seat) error {
	return d.enqueue(ctx, models.NoticeCustomerConfirmed, seat)
}

func (d *DefaultDispatcher) CustomerCancelled(ctx context.Context, seat *models.Seat) error {
	return d.enqueue(ctx, models.NoticeCustomerCancelled, seat)
}

func (d *DefaultDispatcher) CoachConfirmRequired(ctx context.Context, seat *models.Seat) error {
	return d.enqueue(ctx, models.NoticeCoachConfirmRequired, seat)
}

func (d *DefaultDispatcher) enqueue(ctx context.Context, kind models.SeatNoticeKind, seat *models.Seat) error {
	notice := models.SeatNotice{
		Kind:       kind,
		SeatID:     seat.ID,
		CoachID:    seat.CoachID,
		CustomerID: seat.CustomerID,
		Date:       seat.Date,
		Start:      seat.Start,
		End:        seat.End,
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal seat notice: %w", err)
	}
	if _, err := d.Client.EnqueueContext(ctx, asynq.NewTask(TypeSeatNotice, payload)); err != nil {
		return fmt.Errorf("failed to enqueue seat notice: %w", err)
	}
	d.Logger.Debug("seat notice enqueued",
		zap.String("kind", string(kind)),
		zap.String("seat_id", seat.ID))
	return nil
}
