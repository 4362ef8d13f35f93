package scheduling

import (
	"context"
	"testing"

	"fitstudio/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type memTraineeRepo struct {
	trainees []*models.Trainee
}

func (r *memTraineeRepo) Create(_ context.Context, t *models.Trainee) error {
	r.trainees = append(r.trainees, t)
	return nil
}

func (r *memTraineeRepo) GetByID(_ context.Context, id string) (*models.Trainee, error) {
	for _, t := range r.trainees {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memTraineeRepo) GetByCoachCustomer(_ context.Context, coachID, customerID string) (*models.Trainee, error) {
	for _, t := range r.trainees {
		if t.CoachID == coachID && t.CustomerID == customerID {
			return t, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memTraineeRepo) ListByCoach(_ context.Context, coachID string) ([]models.Trainee, error) {
	var out []models.Trainee
	for _, t := range r.trainees {
		if t.CoachID == coachID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTraineeRepo) AdjustLessons(_ context.Context, id string, totalDelta, attendedDelta int) error {
	for _, t := range r.trainees {
		if t.ID == id {
			t.TotalLessons += totalDelta
			t.AttendedLessons += attendedDelta
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func TestResolveBoundTraineeIsPrivate(t *testing.T) {
	trainees := &memTraineeRepo{trainees: []*models.Trainee{
		{ID: "t1", CoachID: "c1", CustomerID: "u1", Kind: models.TraineeKindPrivate, IsBind: true},
	}}
	r := &DefaultResolver{Trainees: trainees, Seats: newMemSeatRepo()}

	prio, err := r.Resolve(context.Background(), "c1", "u1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if prio != models.PriorityPrivate {
		t.Fatalf("expected private, got %d", prio)
	}
}

func TestResolveUnboundCustomerIsTrial(t *testing.T) {
	r := &DefaultResolver{Trainees: &memTraineeRepo{}, Seats: newMemSeatRepo()}

	prio, err := r.Resolve(context.Background(), "c1", "u-new")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if prio != models.PriorityExperience {
		t.Fatalf("expected experience, got %d", prio)
	}
}

func TestResolveBlocksSecondOutstandingTrial(t *testing.T) {
	seats := newMemSeatRepo()
	// A live trial hold with a different coach still blocks.
	seats.seats["s1"] = &models.Seat{
		ID: "s1", CoachID: "c-other", CustomerID: "u-new", Date: 20260105,
		Start: 600, End: 660, Status: models.SeatStatusConfirmRequired,
		Priority: models.PriorityExperience, Valid: true,
	}
	r := &DefaultResolver{Trainees: &memTraineeRepo{}, Seats: seats}

	if _, err := r.Resolve(context.Background(), "c1", "u-new"); err != ErrExperienceLimit {
		t.Fatalf("expected ErrExperienceLimit, got %v", err)
	}
}

func TestResolveAllowsNewTrialAfterCancellation(t *testing.T) {
	seats := newMemSeatRepo()
	seats.seats["s1"] = &models.Seat{
		ID: "s1", CoachID: "c-other", CustomerID: "u-new", Date: 20260105,
		Start: 600, End: 660, Status: models.SeatStatusConfirmRequired,
		Priority: models.PriorityExperience, Valid: false, // cancelled
	}
	r := &DefaultResolver{Trainees: &memTraineeRepo{}, Seats: seats}

	prio, err := r.Resolve(context.Background(), "c1", "u-new")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if prio != models.PriorityExperience {
		t.Fatalf("expected experience, got %d", prio)
	}
}

func TestExperienceOpenHonorsDailyCap(t *testing.T) {
	seats := newMemSeatRepo()
	r := &DefaultResolver{Trainees: &memTraineeRepo{}, Seats: seats}
	ctx := context.Background()

	open, err := r.ExperienceOpen(ctx, "c1", 20260105)
	if err != nil || !open {
		t.Fatalf("empty day should be open: %v %v", open, err)
	}

	for i, id := range []string{"s1", "s2"} {
		seats.seats[id] = &models.Seat{
			ID: id, CoachID: "c1", Date: 20260105,
			Start: 600 + i*60, End: 660 + i*60,
			Status: models.SeatStatusConfirmRequired, Priority: models.PriorityExperience, Valid: true,
		}
	}
	open, err = r.ExperienceOpen(ctx, "c1", 20260105)
	if err != nil {
		t.Fatalf("experience open failed: %v", err)
	}
	if open {
		t.Fatalf("two pending trials should close the day")
	}
}
