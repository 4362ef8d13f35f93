package trigger

import (
	"context"
	"testing"
	"time"

	"fitstudio/models"
	"fitstudio/services/scheduling"

	"go.uber.org/zap"
)

type memTriggerRepo struct {
	rules []*models.SeatTrigger
}

func (r *memTriggerRepo) Create(_ context.Context, t *models.SeatTrigger) error {
	r.rules = append(r.rules, t)
	return nil
}

func (r *memTriggerRepo) Deactivate(_ context.Context, id string) error {
	for _, rule := range r.rules {
		if rule.ID == id {
			rule.Active = false
		}
	}
	return nil
}

func (r *memTriggerRepo) ListByCoach(_ context.Context, coachID string, activeOnly bool) ([]models.SeatTrigger, error) {
	var out []models.SeatTrigger
	for _, rule := range r.rules {
		if rule.CoachID != coachID {
			continue
		}
		if activeOnly && !rule.Active {
			continue
		}
		out = append(out, *rule)
	}
	return out, nil
}

func (r *memTriggerRepo) ListActive(_ context.Context) ([]models.SeatTrigger, error) {
	var out []models.SeatTrigger
	for _, rule := range r.rules {
		if rule.Active {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *memTriggerRepo) MarkMaterialized(_ context.Context, id string, date int) error {
	for _, rule := range r.rules {
		if rule.ID == id {
			rule.LastDate = date
		}
	}
	return nil
}

// stubEngine records reservations and optionally refuses them.
type stubEngine struct {
	reserved   []scheduling.ReserveRequest
	reserveErr error
}

func (e *stubEngine) ListSeats(context.Context, string, int) ([]models.Seat, error) { return nil, nil }
func (e *stubEngine) FindConflicts(context.Context, string, int, scheduling.Interval, string) ([]models.Seat, error) {
	return nil, nil
}
func (e *stubEngine) AddBreak(context.Context, string, string, int, scheduling.Interval, string) (*models.Seat, error) {
	return nil, nil
}
func (e *stubEngine) RemoveBreak(context.Context, string, int, scheduling.Interval) error {
	return nil
}
func (e *stubEngine) Reserve(_ context.Context, req scheduling.ReserveRequest) (*models.Seat, error) {
	if e.reserveErr != nil {
		return nil, e.reserveErr
	}
	e.reserved = append(e.reserved, req)
	return &models.Seat{ID: "seat-1"}, nil
}
func (e *stubEngine) Confirm(context.Context, string) error { return nil }
func (e *stubEngine) Cancel(context.Context, string) error  { return nil }
func (e *stubEngine) CheckIn(context.Context, string) error { return nil }

type stubResolver struct {
	prio models.SeatPriority
	err  error
}

func (r *stubResolver) Resolve(context.Context, string, string) (models.SeatPriority, error) {
	return r.prio, r.err
}

func (r *stubResolver) ExperienceOpen(context.Context, string, int) (bool, error) {
	return true, nil
}

func newTestService(repo *memTriggerRepo, engine *stubEngine, resolver *stubResolver) *DefaultService {
	return &DefaultService{
		Triggers: repo,
		Engine:   engine,
		Resolver: resolver,
		Logger:   zap.NewNop(),
	}
}

func weeklyRule(id string, weekday, start, end int) *models.SeatTrigger {
	return &models.SeatTrigger{
		ID: id, BizID: "biz-1", CoachID: "c1", CustomerID: "u1",
		Weekday: weekday, Start: start, End: end, Active: true,
	}
}

func TestCreateRejectsOverlappingRule(t *testing.T) {
	repo := &memTriggerRepo{}
	svc := newTestService(repo, &stubEngine{}, &stubResolver{prio: models.PriorityPrivate})
	ctx := context.Background()

	if err := svc.Create(ctx, weeklyRule("r1", 1, 600, 660)); err != nil {
		t.Fatalf("first rule: %v", err)
	}
	if err := svc.Create(ctx, weeklyRule("r2", 1, 630, 690)); err != ErrTriggerOverlap {
		t.Fatalf("expected ErrTriggerOverlap, got %v", err)
	}
	// Same window on another weekday is fine.
	if err := svc.Create(ctx, weeklyRule("r3", 2, 630, 690)); err != nil {
		t.Fatalf("other weekday: %v", err)
	}
}

func TestCreateRejectsDegenerateWindow(t *testing.T) {
	svc := newTestService(&memTriggerRepo{}, &stubEngine{}, &stubResolver{})
	if err := svc.Create(context.Background(), weeklyRule("r1", 1, 600, 605)); err != scheduling.ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestNextOccurrence(t *testing.T) {
	// 2026-01-05 is a Monday.
	rule := models.SeatTrigger{Weekday: 1, Start: 600} // Mondays 10:00

	early := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	if got := nextOccurrence(rule, early); got != 20260105 {
		t.Fatalf("before start on the weekday: got %d", got)
	}

	late := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if got := nextOccurrence(rule, late); got != 20260112 {
		t.Fatalf("at start on the weekday: got %d", got)
	}

	midweek := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC) // Wednesday
	if got := nextOccurrence(rule, midweek); got != 20260112 {
		t.Fatalf("from midweek: got %d", got)
	}
}

func TestMaterializeCreatesHoldAndMarksRule(t *testing.T) {
	repo := &memTriggerRepo{rules: []*models.SeatTrigger{weeklyRule("r1", 1, 600, 660)}}
	engine := &stubEngine{}
	svc := newTestService(repo, engine, &stubResolver{prio: models.PriorityPrivate})

	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC) // Monday, before start
	if err := svc.MaterializeUpcoming(context.Background(), now); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	if len(engine.reserved) != 1 {
		t.Fatalf("expected one reservation, got %d", len(engine.reserved))
	}
	req := engine.reserved[0]
	if req.Date != 20260105 || req.Start != 600 || req.Status != models.SeatStatusConfirmRequired {
		t.Fatalf("unexpected reservation: %+v", req)
	}
	if repo.rules[0].LastDate != 20260105 {
		t.Fatalf("rule not marked, last_date=%d", repo.rules[0].LastDate)
	}

	// A second sweep for the same occurrence is a no-op.
	if err := svc.MaterializeUpcoming(context.Background(), now); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(engine.reserved) != 1 {
		t.Fatalf("occurrence materialized twice")
	}
}

func TestMaterializeSkipsOccupiedSlotWithoutRetry(t *testing.T) {
	repo := &memTriggerRepo{rules: []*models.SeatTrigger{weeklyRule("r1", 1, 600, 660)}}
	engine := &stubEngine{reserveErr: scheduling.ErrSlotOccupied}
	svc := newTestService(repo, engine, &stubResolver{prio: models.PriorityPrivate})

	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	if err := svc.MaterializeUpcoming(context.Background(), now); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	// Lost occurrences are written off, not retried all week.
	if repo.rules[0].LastDate != 20260105 {
		t.Fatalf("occupied occurrence not marked, last_date=%d", repo.rules[0].LastDate)
	}
}

func TestMaterializeSkipsIneligibleCustomer(t *testing.T) {
	repo := &memTriggerRepo{rules: []*models.SeatTrigger{weeklyRule("r1", 1, 600, 660)}}
	engine := &stubEngine{}
	svc := newTestService(repo, engine, &stubResolver{err: scheduling.ErrExperienceLimit})

	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	if err := svc.MaterializeUpcoming(context.Background(), now); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(engine.reserved) != 0 {
		t.Fatalf("ineligible customer still reserved")
	}
	// Not marked; the rule may become eligible later in the week.
	if repo.rules[0].LastDate != 0 {
		t.Fatalf("ineligible occurrence marked, last_date=%d", repo.rules[0].LastDate)
	}
}
