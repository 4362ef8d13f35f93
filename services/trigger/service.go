// File: services/trigger/service.go
package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	triggerRepo "fitstudio/database/repository/trigger"
	"fitstudio/models"
	"fitstudio/services/scheduling"

	"go.uber.org/zap"
)

// ErrTriggerOverlap rejects a rule that collides with an existing rule
// for the same coach's weekly window.
var ErrTriggerOverlap = errors.New("recurring rule overlaps an existing rule")

// Service manages weekly recurring-booking rules and turns each rule
// into a real confirm-required seat for its next occurrence.
type Service interface {
	Create(ctx context.Context, t *models.SeatTrigger) error
	Deactivate(ctx context.Context, id string) error
	ListByCoach(ctx context.Context, coachID string) ([]models.SeatTrigger, error)
	// MaterializeUpcoming generates the next-occurrence seat for every
	// active rule that has not fired for that date yet. Occupied slots
	// skip the occurrence rather than failing the sweep.
	MaterializeUpcoming(ctx context.Context, now time.Time) error
}

// DefaultService is the production implementation.
type DefaultService struct {
	Triggers triggerRepo.TriggerRepository
	Engine   scheduling.Engine
	Resolver scheduling.Resolver
	Logger   *zap.Logger
}

func (s *DefaultService) Create(ctx context.Context, t *models.SeatTrigger) error {
	if t.End-t.Start <= scheduling.SliceMinutes {
		return scheduling.ErrInvalidInterval
	}
	existing, err := s.Triggers.ListByCoach(ctx, t.CoachID, true)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}
	for _, other := range existing {
		if other.Weekday == t.Weekday && t.Start < other.End && other.Start < t.End {
			return ErrTriggerOverlap
		}
	}
	return s.Triggers.Create(ctx, t)
}

func (s *DefaultService) Deactivate(ctx context.Context, id string) error {
	return s.Triggers.Deactivate(ctx, id)
}

func (s *DefaultService) ListByCoach(ctx context.Context, coachID string) ([]models.SeatTrigger, error) {
	return s.Triggers.ListByCoach(ctx, coachID, false)
}

func (s *DefaultService) MaterializeUpcoming(ctx context.Context, now time.Time) error {
	rules, err := s.Triggers.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active rules: %w", err)
	}
	for _, rule := range rules {
		date := nextOccurrence(rule, now)
		if rule.LastDate >= date {
			continue // already fired for this occurrence
		}
		priority, err := s.Resolver.Resolve(ctx, rule.CoachID, rule.CustomerID)
		if err != nil {
			s.Logger.Warn("trigger: customer not eligible this week",
				zap.String("trigger_id", rule.ID), zap.Error(err))
			continue
		}
		_, err = s.Engine.Reserve(ctx, scheduling.ReserveRequest{
			Actor:      scheduling.ActorCustomer,
			BizID:      rule.BizID,
			CoachID:    rule.CoachID,
			CustomerID: rule.CustomerID,
			Date:       date,
			Start:      rule.Start,
			End:        rule.End,
			Priority:   priority,
			Status:     models.SeatStatusConfirmRequired,
		})
		if err != nil {
			if errors.Is(err, scheduling.ErrSlotOccupied) {
				s.Logger.Info("trigger: occurrence skipped, slot occupied",
					zap.String("trigger_id", rule.ID), zap.Int("date", date))
			} else {
				s.Logger.Error("trigger: failed to materialize occurrence",
					zap.String("trigger_id", rule.ID), zap.Error(err))
				continue
			}
		}
		// Mark the occurrence handled either way so the rule does not
		// retry a lost slot all week.
		if err := s.Triggers.MarkMaterialized(ctx, rule.ID, date); err != nil {
			s.Logger.Error("trigger: failed to record occurrence",
				zap.String("trigger_id", rule.ID), zap.Error(err))
		}
	}
	return nil
}

// nextOccurrence returns the YYYYMMDD of the rule's next firing: the
// coming weekday, or today while the start time is still ahead.
func nextOccurrence(rule models.SeatTrigger, now time.Time) int {
	days := (rule.Weekday - int(now.Weekday()) + 7) % 7
	if days == 0 {
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, rule.Start, 0, 0, now.Location())
		if !now.Before(startOfDay) {
			days = 7
		}
	}
	day := now.AddDate(0, 0, days)
	return day.Year()*10000 + int(day.Month())*100 + day.Day()
}
