// File: services/ledger/service.go
package ledger

import (
	"context"
	"errors"
	"fmt"

	contractRepo "fitstudio/database/repository/contract"
	ledgerlogRepo "fitstudio/database/repository/ledgerlog"
	traineeRepo "fitstudio/database/repository/trainee"
	"fitstudio/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrInsufficientCredit means no contract line has remaining credit for
// the attendance being recorded.
var ErrInsufficientCredit = errors.New("insufficient lessons remaining")

// Service tracks lesson credits. Contract lines are the authoritative
// ledger; the legacy trainee counters survive for manual top-ups and
// audit display.
type Service interface {
	// DeductForAttendance consumes one credit for the seat, drawing from
	// the oldest valid contract line with remaining credit.
	DeductForAttendance(ctx context.Context, seat *models.Seat) error
	// RefundForCancellation reverses the seat's deduction, returning the
	// credit to the exact line it was drawn from. A seat that never
	// deducted is a no-op.
	RefundForCancellation(ctx context.Context, seat *models.Seat) error
	// Recharge and Deduct move the legacy trainee counters independently
	// of any seat, recording audit entries.
	Recharge(ctx context.Context, traineeID string, lessons int, note string) error
	Deduct(ctx context.Context, traineeID string, lessons int, note string) error
	Entries(ctx context.Context, customerID string) ([]models.LedgerEntry, error)
}

// DefaultService is the production implementation.
type DefaultService struct {
	Contracts contractRepo.ContractRepository
	Trainees  traineeRepo.TraineeRepository
	Log       ledgerlogRepo.LedgerLogRepository
	Logger    *zap.Logger
}

func (s *DefaultService) DeductForAttendance(ctx context.Context, seat *models.Seat) error {
	content, err := s.Contracts.FindOldestWithCredit(ctx, seat.CustomerID, seat.CoachID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInsufficientCredit
		}
		return fmt.Errorf("find credit line: %w", err)
	}

	if err := s.Contracts.AdjustAttended(ctx, content.ID, 1); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The line ran out between lookup and adjust.
			return ErrInsufficientCredit
		}
		return fmt.Errorf("consume credit: %w", err)
	}

	entry := &models.LedgerEntry{
		BizID:             seat.BizID,
		CustomerID:        seat.CustomerID,
		CoachID:           seat.CoachID,
		SeatID:            seat.ID,
		ContractContentID: content.ID,
		Kind:              models.LedgerEntryAttend,
		Delta:             -1,
	}
	if err := s.Log.Append(ctx, entry); err != nil {
		// The counter already moved; the audit trail is best-effort.
		s.Logger.Warn("ledger: failed to append attend entry",
			zap.String("seat_id", seat.ID), zap.Error(err))
	}
	return nil
}

func (s *DefaultService) RefundForCancellation(ctx context.Context, seat *models.Seat) error {
	entry, err := s.Log.FindAttendEntry(ctx, seat.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Nothing was deducted for this seat (e.g. a trial class).
			return nil
		}
		return fmt.Errorf("find attend entry: %w", err)
	}

	// A refund already on record means a prior cancellation (or a retried
	// one) reversed this deduction; refunding again would mint a credit.
	if _, err := s.Log.FindRefundEntry(ctx, seat.ID); err == nil {
		return nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("find refund entry: %w", err)
	}

	if err := s.Contracts.AdjustAttended(ctx, entry.ContractContentID, -1); err != nil {
		return fmt.Errorf("refund credit: %w", err)
	}

	refund := &models.LedgerEntry{
		BizID:             seat.BizID,
		CustomerID:        seat.CustomerID,
		CoachID:           seat.CoachID,
		SeatID:            seat.ID,
		ContractContentID: entry.ContractContentID,
		Kind:              models.LedgerEntryRefund,
		Delta:             1,
	}
	if err := s.Log.Append(ctx, refund); err != nil {
		s.Logger.Warn("ledger: failed to append refund entry",
			zap.String("seat_id", seat.ID), zap.Error(err))
	}
	return nil
}

func (s *DefaultService) Recharge(ctx context.Context, traineeID string, lessons int, note string) error {
	return s.adjustTrainee(ctx, traineeID, lessons, models.LedgerEntryRecharge, note)
}

func (s *DefaultService) Deduct(ctx context.Context, traineeID string, lessons int, note string) error {
	return s.adjustTrainee(ctx, traineeID, -lessons, models.LedgerEntryDeduct, note)
}

func (s *DefaultService) adjustTrainee(ctx context.Context, traineeID string, delta int, kind models.LedgerEntryKind, note string) error {
	if delta == 0 {
		return nil
	}
	trainee, err := s.Trainees.GetByID(ctx, traineeID)
	if err != nil {
		return fmt.Errorf("get trainee: %w", err)
	}
	if err := s.Trainees.AdjustLessons(ctx, traineeID, delta, 0); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInsufficientCredit
		}
		return fmt.Errorf("adjust trainee lessons: %w", err)
	}
	entry := &models.LedgerEntry{
		BizID:      trainee.BizID,
		TraineeID:  traineeID,
		CustomerID: trainee.CustomerID,
		CoachID:    trainee.CoachID,
		Kind:       kind,
		Delta:      delta,
		Note:       note,
	}
	if err := s.Log.Append(ctx, entry); err != nil {
		s.Logger.Warn("ledger: failed to append manual entry",
			zap.String("trainee_id", traineeID), zap.Error(err))
	}
	return nil
}

func (s *DefaultService) Entries(ctx context.Context, customerID string) ([]models.LedgerEntry, error) {
	return s.Log.ListByCustomer(ctx, customerID)
}
