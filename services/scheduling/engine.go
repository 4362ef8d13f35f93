// File: services/scheduling/engine.go
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	seatRepo "fitstudio/database/repository/seat"
	"fitstudio/models"
	"fitstudio/services/ledger"
	"fitstudio/services/notification"
	"fitstudio/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// lockTTL bounds how long one conflict-check-then-write sequence may
// hold a coach's day. The lock auto-renews, so the TTL only matters if
// the process dies mid-mutation.
const lockTTL = 5 * time.Second

// DefaultEngine is the production scheduling engine. Every mutating
// operation runs its read-check-write sequence under the named lock for
// the (coach, date) partition, which closes the double-booking window
// between concurrent requests.
type DefaultEngine struct {
	Seats    seatRepo.SeatRepository
	Ledger   ledger.Service
	Notifier notification.Dispatcher
	Locker   utils.Locker
	Cache    ReportInvalidator
	Logger   *zap.Logger

	// now is swappable so time-dependent transitions are testable.
	now func() time.Time
}

func NewDefaultEngine(
	seats seatRepo.SeatRepository,
	ledgerSvc ledger.Service,
	notifier notification.Dispatcher,
	locker utils.Locker,
	cache ReportInvalidator,
	logger *zap.Logger,
) *DefaultEngine {
	return &DefaultEngine{
		Seats:    seats,
		Ledger:   ledgerSvc,
		Notifier: notifier,
		Locker:   locker,
		Cache:    cache,
		Logger:   logger,
		now:      time.Now,
	}
}

func dayLockKey(coachID string, date int) string {
	return fmt.Sprintf("sched:%s:%d", coachID, date)
}

func checkinLockKey(customerID string) string {
	return "checkin:" + customerID
}

func (e *DefaultEngine) ListSeats(ctx context.Context, coachID string, date int) ([]models.Seat, error) {
	return e.Seats.ListByCoachDate(ctx, coachID, date, true)
}

// FindConflicts returns every valid seat whose slices intersect the
// candidate interval, skipping the candidate itself when persisted.
func (e *DefaultEngine) FindConflicts(ctx context.Context, coachID string, date int, iv Interval, excludeSeatID string) ([]models.Seat, error) {
	seats, err := e.Seats.ListByCoachDate(ctx, coachID, date, true)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	var conflicts []models.Seat
	for _, s := range seats {
		if s.ID == excludeSeatID {
			continue
		}
		existing := Interval{Date: s.Date, Start: s.Start, End: s.End}
		if iv.Overlaps(existing) {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts, nil
}

// Reserve is the core booking operation. Existing confirm-required
// holds of strictly lower priority are left in place as displaceable;
// they get cancelled when the winning seat is confirmed, not here, so
// an in-flight lower-priority attempt is never dropped silently.
func (e *DefaultEngine) Reserve(ctx context.Context, req ReserveRequest) (*models.Seat, error) {
	iv, err := NewInterval(req.Date, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if err := validateActorStatus(req.Actor, req.Status); err != nil {
		return nil, err
	}

	release, err := e.Locker.Acquire(ctx, dayLockKey(req.CoachID, req.Date), lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire day lock: %w", err)
	}
	defer release()

	conflicts, err := e.FindConflicts(ctx, req.CoachID, req.Date, iv, "")
	if err != nil {
		return nil, err
	}
	for _, c := range conflicts {
		displaceable := c.Status == models.SeatStatusConfirmRequired && c.Priority < req.Priority
		if !displaceable {
			return nil, ErrSlotOccupied
		}
	}

	now := e.now()
	seat := &models.Seat{
		ID:         uuid.New().String(),
		BizID:      req.BizID,
		CoachID:    req.CoachID,
		CustomerID: req.CustomerID,
		Date:       req.Date,
		Start:      req.Start,
		End:        req.End,
		Status:     req.Status,
		Priority:   req.Priority,
		Valid:      true,
		Note:       req.Note,
		ReservedAt: now,
	}
	if req.Status == models.SeatStatusAttended {
		at := now
		seat.CheckedInAt = &at
	}
	if req.Status == models.SeatStatusConfirmed {
		at := now
		seat.ConfirmedAt = &at
	}

	if err := e.Seats.Insert(ctx, seat); err != nil {
		return nil, fmt.Errorf("persist seat: %w", err)
	}

	if req.Status == models.SeatStatusAttended {
		// A past-dated coach entry consumes its credit; deducting only
		// after the insert lands means a failed write costs nothing. If
		// the customer has no credit left the seat is withdrawn.
		if err := e.deductIfBillable(ctx, seat); err != nil {
			if inv := e.Seats.Invalidate(ctx, seat.ID, now); inv != nil {
				e.Logger.Error("failed to withdraw unbilled seat",
					zap.String("seat_id", seat.ID), zap.Error(inv))
			}
			return nil, err
		}
	}

	switch req.Status {
	case models.SeatStatusConfirmRequired:
		e.dispatch(ctx, e.Notifier.CoachConfirmRequired, seat)
	case models.SeatStatusConfirmed:
		e.dispatch(ctx, e.Notifier.CustomerConfirmed, seat)
	}
	e.invalidate(ctx, seat)
	return seat, nil
}

// Confirm finalizes a confirm-required hold. A hold whose slot already
// elapsed confirms straight to attended (the class happened); leftover
// lower-priority holds on the same slices are force-cancelled now.
func (e *DefaultEngine) Confirm(ctx context.Context, seatID string) error {
	seat, err := e.getSeat(ctx, seatID)
	if err != nil {
		return err
	}

	release, err := e.Locker.Acquire(ctx, dayLockKey(seat.CoachID, seat.Date), lockTTL)
	if err != nil {
		return fmt.Errorf("acquire day lock: %w", err)
	}
	defer release()

	// Re-read under the lock; the seat may have moved while we waited.
	seat, err = e.getSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if seat.Status == models.SeatStatusConfirmed {
		// Idempotent no-op: nothing changes and nothing gets cancelled.
		return nil
	}
	if !seat.Valid || seat.Status != models.SeatStatusConfirmRequired {
		return ErrInvalidState
	}

	now := e.now()
	target := models.SeatStatusConfirmed
	if EffectiveStatus(seat, now) == models.SeatStatusConfirmExpired {
		target = models.SeatStatusAttended
	}

	if target == models.SeatStatusAttended {
		if err := e.deductIfBillable(ctx, seat); err != nil {
			return err
		}
	}

	if err := e.Seats.TransitionStatus(ctx, seat.ID, []models.SeatStatus{models.SeatStatusConfirmRequired}, target, now); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidState
		}
		return fmt.Errorf("transition seat: %w", err)
	}

	// Displace the holds that lost: every other seat still overlapping
	// this one was left in place at booking time.
	iv := Interval{Date: seat.Date, Start: seat.Start, End: seat.End}
	conflicts, err := e.FindConflicts(ctx, seat.CoachID, seat.Date, iv, seat.ID)
	if err != nil {
		return fmt.Errorf("find displaced holds: %w", err)
	}
	for i := range conflicts {
		loser := conflicts[i]
		if err := e.Seats.Invalidate(ctx, loser.ID, now); err != nil {
			e.Logger.Error("failed to cancel displaced hold",
				zap.String("seat_id", loser.ID), zap.Error(err))
			continue
		}
		if loser.CustomerID != "" {
			e.dispatch(ctx, e.Notifier.CustomerCancelled, &loser)
		}
	}

	if target == models.SeatStatusConfirmed {
		e.dispatch(ctx, e.Notifier.CustomerConfirmed, seat)
	}
	e.invalidate(ctx, seat)
	return nil
}

// Cancel is allowed from any status and is idempotent. Cancelling an
// attended seat refunds its credit, since the class is no longer
// counted as delivered.
func (e *DefaultEngine) Cancel(ctx context.Context, seatID string) error {
	seat, err := e.getSeat(ctx, seatID)
	if err != nil {
		return err
	}

	release, err := e.Locker.Acquire(ctx, dayLockKey(seat.CoachID, seat.Date), lockTTL)
	if err != nil {
		return fmt.Errorf("acquire day lock: %w", err)
	}
	defer release()

	// Re-read under the lock so a concurrent cancel that already
	// invalidated (and refunded) the seat lands on the no-op branch.
	seat, err = e.getSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if !seat.Valid {
		return nil
	}

	if seat.Status == models.SeatStatusAttended {
		if err := e.Ledger.RefundForCancellation(ctx, seat); err != nil {
			return fmt.Errorf("refund credit: %w", err)
		}
	}

	if err := e.Seats.Invalidate(ctx, seat.ID, e.now()); err != nil {
		return fmt.Errorf("invalidate seat: %w", err)
	}
	if seat.CustomerID != "" {
		e.dispatch(ctx, e.Notifier.CustomerCancelled, seat)
	}
	e.invalidate(ctx, seat)
	return nil
}

// CheckIn marks a confirmed seat attended, deducting the lesson credit.
// The per-customer lock serializes a member tapping in on two devices.
func (e *DefaultEngine) CheckIn(ctx context.Context, seatID string) error {
	seat, err := e.getSeat(ctx, seatID)
	if err != nil {
		return err
	}

	release, err := e.Locker.Acquire(ctx, checkinLockKey(seat.CustomerID), lockTTL)
	if err != nil {
		return fmt.Errorf("acquire check-in lock: %w", err)
	}
	defer release()

	// Re-read under the lock; a concurrent tap may have attended the
	// seat already, and deducting again would bill the class twice.
	seat, err = e.getSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if !seat.Valid || seat.Status != models.SeatStatusConfirmed {
		return ErrInvalidState
	}

	if err := e.deductIfBillable(ctx, seat); err != nil {
		return err
	}
	if err := e.Seats.TransitionStatus(ctx, seat.ID, []models.SeatStatus{models.SeatStatusConfirmed}, models.SeatStatusAttended, e.now()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidState
		}
		return fmt.Errorf("transition seat: %w", err)
	}
	e.invalidate(ctx, seat)
	return nil
}

// deductIfBillable consumes a credit for paid bookings. Trial classes
// never touch the contract ledger.
func (e *DefaultEngine) deductIfBillable(ctx context.Context, seat *models.Seat) error {
	if seat.CustomerID == "" || seat.Priority != models.PriorityPrivate {
		return nil
	}
	return e.Ledger.DeductForAttendance(ctx, seat)
}

func (e *DefaultEngine) getSeat(ctx context.Context, seatID string) (*models.Seat, error) {
	seat, err := e.Seats.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSeatNotFound
		}
		return nil, fmt.Errorf("get seat: %w", err)
	}
	return seat, nil
}

// dispatch fires a notification and logs the failure. Notification
// errors never roll back a seat mutation.
func (e *DefaultEngine) dispatch(ctx context.Context, send func(context.Context, *models.Seat) error, seat *models.Seat) {
	if e.Notifier == nil {
		return
	}
	if err := send(ctx, seat); err != nil {
		e.Logger.Warn("seat notification failed",
			zap.String("seat_id", seat.ID), zap.Error(err))
	}
}

func (e *DefaultEngine) invalidate(ctx context.Context, seat *models.Seat) {
	if e.Cache == nil {
		return
	}
	e.Cache.CoachReport(ctx, seat.CoachID, seat.Date)
	if seat.CustomerID != "" {
		e.Cache.CustomerProfile(ctx, seat.CustomerID)
	}
}

func validateActorStatus(actor Actor, status models.SeatStatus) error {
	switch actor {
	case ActorCustomer:
		if status != models.SeatStatusConfirmRequired {
			return ErrNotAllowed
		}
	case ActorCoach:
		if status != models.SeatStatusConfirmed && status != models.SeatStatusAttended &&
			status != models.SeatStatusConfirmRequired {
			return ErrNotAllowed
		}
	default:
		return ErrNotAllowed
	}
	return nil
}
