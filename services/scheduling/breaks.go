// File: services/scheduling/breaks.go
package scheduling

import (
	"context"
	"fmt"

	"fitstudio/models"

	"github.com/google/uuid"
)

// AddBreak blocks an interval of the coach's day. Contiguous or
// overlapping break seats are absorbed into one spanning seat so the
// day never fragments into slivers. Any intersection with a non-break
// seat refuses the whole operation.
func (e *DefaultEngine) AddBreak(ctx context.Context, bizID, coachID string, date int, iv Interval, note string) (*models.Seat, error) {
	if _, err := NewInterval(iv.Date, iv.Start, iv.End); err != nil {
		return nil, err
	}

	release, err := e.Locker.Acquire(ctx, dayLockKey(coachID, date), lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire day lock: %w", err)
	}
	defer release()

	seats, err := e.Seats.ListByCoachDate(ctx, coachID, date, true)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}

	start, end := iv.Start, iv.End
	var absorbed []models.Seat
	for _, s := range seats {
		existing := Interval{Date: s.Date, Start: s.Start, End: s.End}
		if !s.IsBreak() {
			if iv.Overlaps(existing) {
				return nil, ErrOccupied
			}
			continue
		}
		// Merge breaks that touch or overlap the new window.
		if iv.Overlaps(existing) || s.End == start || s.Start == end {
			absorbed = append(absorbed, s)
			if s.Start < start {
				start = s.Start
			}
			if s.End > end {
				end = s.End
			}
		}
	}

	for _, s := range absorbed {
		if err := e.Seats.DeleteBreak(ctx, s.ID); err != nil {
			return nil, fmt.Errorf("absorb break %s: %w", s.ID, err)
		}
	}

	seat := &models.Seat{
		ID:         uuid.New().String(),
		BizID:      bizID,
		CoachID:    coachID,
		Date:       date,
		Start:      start,
		End:        end,
		Status:     models.SeatStatusBreak,
		Valid:      true,
		Note:       note,
		ReservedAt: e.now(),
	}
	if err := e.Seats.Insert(ctx, seat); err != nil {
		return nil, fmt.Errorf("persist break: %w", err)
	}
	e.invalidate(ctx, seat)
	return seat, nil
}

// RemoveBreak frees an interval previously blocked. Depending on where
// the interval sits inside the containing break seat, the seat is
// deleted, shrunk from either edge, or split in two.
func (e *DefaultEngine) RemoveBreak(ctx context.Context, coachID string, date int, iv Interval) error {
	release, err := e.Locker.Acquire(ctx, dayLockKey(coachID, date), lockTTL)
	if err != nil {
		return fmt.Errorf("acquire day lock: %w", err)
	}
	defer release()

	seats, err := e.Seats.ListByCoachDate(ctx, coachID, date, true)
	if err != nil {
		return fmt.Errorf("list seats: %w", err)
	}

	var containing *models.Seat
	for i := range seats {
		s := &seats[i]
		if s.IsBreak() && s.Start <= iv.Start && s.End >= iv.End {
			containing = s
			break
		}
	}
	if containing == nil {
		return ErrBreakNotFound
	}

	switch {
	case containing.Start == iv.Start && containing.End == iv.End:
		// Whole seat freed.
		if err := e.Seats.DeleteBreak(ctx, containing.ID); err != nil {
			return fmt.Errorf("delete break: %w", err)
		}
	case containing.Start == iv.Start:
		// Freed at the front; keep the tail.
		if err := e.Seats.UpdateWindow(ctx, containing.ID, iv.End, containing.End); err != nil {
			return fmt.Errorf("shrink break: %w", err)
		}
	case containing.End == iv.End:
		// Freed at the back; keep the head.
		if err := e.Seats.UpdateWindow(ctx, containing.ID, containing.Start, iv.Start); err != nil {
			return fmt.Errorf("shrink break: %w", err)
		}
	default:
		// Freed in the middle; the seat splits around the hole.
		if err := e.Seats.UpdateWindow(ctx, containing.ID, containing.Start, iv.Start); err != nil {
			return fmt.Errorf("split break: %w", err)
		}
		tail := &models.Seat{
			ID:         uuid.New().String(),
			BizID:      containing.BizID,
			CoachID:    coachID,
			Date:       date,
			Start:      iv.End,
			End:        containing.End,
			Status:     models.SeatStatusBreak,
			Valid:      true,
			Note:       containing.Note,
			ReservedAt: e.now(),
		}
		if err := e.Seats.Insert(ctx, tail); err != nil {
			return fmt.Errorf("split break tail: %w", err)
		}
	}
	return nil
}
