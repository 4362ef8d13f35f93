package scheduling

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"fitstudio/models"
	"fitstudio/services/ledger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// memSeatRepo is an in-memory SeatRepository with the same guard
// semantics as the Mongo implementation.
type memSeatRepo struct {
	seats map[string]*models.Seat
}

func newMemSeatRepo() *memSeatRepo {
	return &memSeatRepo{seats: make(map[string]*models.Seat)}
}

func (r *memSeatRepo) Insert(_ context.Context, seat *models.Seat) error {
	cp := *seat
	r.seats[seat.ID] = &cp
	return nil
}

func (r *memSeatRepo) GetByID(_ context.Context, id string) (*models.Seat, error) {
	s, ok := r.seats[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *s
	return &cp, nil
}

func (r *memSeatRepo) ListByCoachDate(_ context.Context, coachID string, date int, onlyValid bool) ([]models.Seat, error) {
	var out []models.Seat
	for _, s := range r.seats {
		if s.CoachID != coachID || s.Date != date {
			continue
		}
		if onlyValid && !s.Valid {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (r *memSeatRepo) TransitionStatus(_ context.Context, id string, from []models.SeatStatus, to models.SeatStatus, at time.Time) error {
	s, ok := r.seats[id]
	if !ok || !s.Valid {
		return mongo.ErrNoDocuments
	}
	matched := false
	for _, f := range from {
		if s.Status == f {
			matched = true
		}
	}
	if !matched {
		return mongo.ErrNoDocuments
	}
	s.Status = to
	switch to {
	case models.SeatStatusConfirmed:
		s.ConfirmedAt = &at
	case models.SeatStatusAttended:
		s.CheckedInAt = &at
	}
	return nil
}

func (r *memSeatRepo) Invalidate(_ context.Context, id string, at time.Time) error {
	s, ok := r.seats[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if s.Valid {
		s.Valid = false
		s.CanceledAt = &at
	}
	return nil
}

func (r *memSeatRepo) UpdateWindow(_ context.Context, id string, start, end int) error {
	s, ok := r.seats[id]
	if !ok || s.Status != models.SeatStatusBreak {
		return mongo.ErrNoDocuments
	}
	s.Start, s.End = start, end
	return nil
}

func (r *memSeatRepo) DeleteBreak(_ context.Context, id string) error {
	s, ok := r.seats[id]
	if !ok || s.Status != models.SeatStatusBreak {
		return mongo.ErrNoDocuments
	}
	delete(r.seats, id)
	return nil
}

func (r *memSeatRepo) CountCustomerHolds(_ context.Context, customerID string, statuses []models.SeatStatus) (int, error) {
	n := 0
	for _, s := range r.seats {
		if s.CustomerID != customerID || !s.Valid {
			continue
		}
		for _, st := range statuses {
			if s.Status == st {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *memSeatRepo) CountExperienceHolds(_ context.Context, coachID string, date int) (int, error) {
	n := 0
	for _, s := range r.seats {
		if s.CoachID == coachID && s.Date == date && s.Valid &&
			s.Priority == models.PriorityExperience && s.Status == models.SeatStatusConfirmRequired {
			n++
		}
	}
	return n, nil
}

// fakeLedger tracks a single credit pool and which seats consumed it.
// refundCalls counts every refund request, successful or not, so a test
// can see the engine asking twice even when the pool stays correct.
type fakeLedger struct {
	credits     int
	deducted    map[string]bool
	refunds     int
	refundCalls int
}

func newFakeLedger(credits int) *fakeLedger {
	return &fakeLedger{credits: credits, deducted: make(map[string]bool)}
}

func (l *fakeLedger) DeductForAttendance(_ context.Context, seat *models.Seat) error {
	if l.credits <= 0 {
		return ledger.ErrInsufficientCredit
	}
	l.credits--
	l.deducted[seat.ID] = true
	return nil
}

func (l *fakeLedger) RefundForCancellation(_ context.Context, seat *models.Seat) error {
	l.refundCalls++
	if !l.deducted[seat.ID] {
		return nil
	}
	delete(l.deducted, seat.ID)
	l.credits++
	l.refunds++
	return nil
}

func (l *fakeLedger) Recharge(context.Context, string, int, string) error { return nil }
func (l *fakeLedger) Deduct(context.Context, string, int, string) error  { return nil }
func (l *fakeLedger) Entries(context.Context, string) ([]models.LedgerEntry, error) {
	return nil, nil
}

// recordingNotifier captures dispatched events per seat.
type recordingNotifier struct {
	confirmed        []string
	cancelled        []string
	confirmRequested []string
}

func (n *recordingNotifier) CustomerConfirmed(_ context.Context, seat *models.Seat) error {
	n.confirmed = append(n.confirmed, seat.ID)
	return nil
}

func (n *recordingNotifier) CustomerCancelled(_ context.Context, seat *models.Seat) error {
	n.cancelled = append(n.cancelled, seat.ID)
	return nil
}

func (n *recordingNotifier) CoachConfirmRequired(_ context.Context, seat *models.Seat) error {
	n.confirmRequested = append(n.confirmRequested, seat.ID)
	return nil
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

// gateLocker lets a test line up two goroutines past their pre-lock
// reads before either enters the critical section. Keys outside the
// armed prefix pass straight through, so setup calls are unaffected.
// Once both goroutines have reported in on entered and proceed is
// closed, a real mutex serializes them like the redis lock would.
type gateLocker struct {
	prefix  string
	armed   bool
	entered chan struct{}
	proceed chan struct{}
	mu      sync.Mutex
}

func newGateLocker(prefix string) *gateLocker {
	return &gateLocker{
		prefix:  prefix,
		entered: make(chan struct{}, 2),
		proceed: make(chan struct{}),
	}
}

func (g *gateLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	if !g.armed || !strings.HasPrefix(key, g.prefix) {
		return func() {}, nil
	}
	g.entered <- struct{}{}
	<-g.proceed
	g.mu.Lock()
	return g.mu.Unlock, nil
}

func newTestEngine(repo *memSeatRepo, led *fakeLedger, rec *recordingNotifier) *DefaultEngine {
	e := NewDefaultEngine(repo, led, rec, noopLocker{}, nil, zap.NewNop())
	e.now = func() time.Time {
		return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	}
	return e
}

func customerReserve(coachID, customerID string, start, end int, prio models.SeatPriority) ReserveRequest {
	return ReserveRequest{
		Actor:      ActorCustomer,
		BizID:      "biz-1",
		CoachID:    coachID,
		CustomerID: customerID,
		Date:       20260105,
		Start:      start,
		End:        end,
		Priority:   prio,
		Status:     models.SeatStatusConfirmRequired,
	}
}

func TestReserveCreatesHoldAndNotifiesCoach(t *testing.T) {
	repo := newMemSeatRepo()
	rec := &recordingNotifier{}
	e := newTestEngine(repo, newFakeLedger(10), rec)

	seat, err := e.Reserve(context.Background(), customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if seat.Status != models.SeatStatusConfirmRequired {
		t.Fatalf("expected confirm_required, got %s", seat.Status)
	}
	if len(rec.confirmRequested) != 1 || rec.confirmRequested[0] != seat.ID {
		t.Fatalf("coach not notified: %v", rec.confirmRequested)
	}
}

func TestReserveRejectsEqualPriorityOverlap(t *testing.T) {
	repo := newMemSeatRepo()
	e := newTestEngine(repo, newFakeLedger(10), &recordingNotifier{})
	ctx := context.Background()

	if _, err := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate)); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	_, err := e.Reserve(ctx, customerReserve("c1", "u2", 630, 690, models.PriorityPrivate))
	if err != ErrSlotOccupied {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
}

func TestReserveLeavesDisplaceableHoldInPlace(t *testing.T) {
	repo := newMemSeatRepo()
	e := newTestEngine(repo, newFakeLedger(10), &recordingNotifier{})
	ctx := context.Background()

	trial, err := e.Reserve(ctx, customerReserve("c1", "u-trial", 600, 660, models.PriorityExperience))
	if err != nil {
		t.Fatalf("trial reserve failed: %v", err)
	}
	private, err := e.Reserve(ctx, customerReserve("c1", "u-member", 600, 660, models.PriorityPrivate))
	if err != nil {
		t.Fatalf("private reserve over trial hold failed: %v", err)
	}

	// The losing hold is only cancelled at confirmation, not at booking.
	got, err := repo.GetByID(ctx, trial.ID)
	if err != nil {
		t.Fatalf("trial seat gone: %v", err)
	}
	if !got.Valid || got.Status != models.SeatStatusConfirmRequired {
		t.Fatalf("trial hold should be untouched, got valid=%v status=%s", got.Valid, got.Status)
	}

	// The reverse never holds: a trial cannot take a private slot.
	if _, err := e.Reserve(ctx, customerReserve("c1", "u-other", 600, 660, models.PriorityExperience)); err != ErrSlotOccupied {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	_ = private
}

func TestConfirmCancelsDisplacedHolds(t *testing.T) {
	repo := newMemSeatRepo()
	rec := &recordingNotifier{}
	e := newTestEngine(repo, newFakeLedger(10), rec)
	ctx := context.Background()

	trial, _ := e.Reserve(ctx, customerReserve("c1", "u-trial", 600, 660, models.PriorityExperience))
	private, _ := e.Reserve(ctx, customerReserve("c1", "u-member", 600, 660, models.PriorityPrivate))

	if err := e.Confirm(ctx, private.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	winner, _ := repo.GetByID(ctx, private.ID)
	if winner.Status != models.SeatStatusConfirmed {
		t.Fatalf("winner status %s", winner.Status)
	}
	loser, _ := repo.GetByID(ctx, trial.ID)
	if loser.Valid {
		t.Fatalf("displaced hold still valid")
	}
	if len(rec.cancelled) != 1 || rec.cancelled[0] != trial.ID {
		t.Fatalf("displaced customer not notified: %v", rec.cancelled)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	repo := newMemSeatRepo()
	rec := &recordingNotifier{}
	e := newTestEngine(repo, newFakeLedger(10), rec)
	ctx := context.Background()

	seat, _ := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	notified := len(rec.confirmed)
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("repeat confirm should no-op, got %v", err)
	}
	if len(rec.confirmed) != notified {
		t.Fatalf("repeat confirm re-notified")
	}
}

func TestConfirmAfterSlotEndMarksAttended(t *testing.T) {
	repo := newMemSeatRepo()
	led := newFakeLedger(1)
	e := newTestEngine(repo, led, &recordingNotifier{})
	ctx := context.Background()

	seat, _ := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))

	// The coach gets to it after the class already happened.
	e.now = func() time.Time {
		return time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	}
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("late confirm failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, seat.ID)
	if got.Status != models.SeatStatusAttended {
		t.Fatalf("expected attended, got %s", got.Status)
	}
	if led.credits != 0 {
		t.Fatalf("credit not consumed, remaining %d", led.credits)
	}
}

func TestConfirmRejectsCancelledSeat(t *testing.T) {
	repo := newMemSeatRepo()
	e := newTestEngine(repo, newFakeLedger(10), &recordingNotifier{})
	ctx := context.Background()

	seat, _ := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err := e.Cancel(ctx, seat.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := e.Confirm(ctx, seat.ID); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCancelIsIdempotentAndRefundsAttendance(t *testing.T) {
	repo := newMemSeatRepo()
	led := newFakeLedger(1)
	e := newTestEngine(repo, led, &recordingNotifier{})
	ctx := context.Background()

	seat, _ := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := e.CheckIn(ctx, seat.ID); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if led.credits != 0 {
		t.Fatalf("check-in did not deduct")
	}

	if err := e.Cancel(ctx, seat.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if led.credits != 1 {
		t.Fatalf("cancelled attendance not refunded, credits %d", led.credits)
	}
	// Second cancel is a no-op; no double refund.
	if err := e.Cancel(ctx, seat.ID); err != nil {
		t.Fatalf("repeat cancel should no-op, got %v", err)
	}
	if led.credits != 1 {
		t.Fatalf("repeat cancel refunded again, credits %d", led.credits)
	}
}

func TestConcurrentCheckInDeductsOnce(t *testing.T) {
	repo := newMemSeatRepo()
	led := newFakeLedger(10)
	gate := newGateLocker("checkin:")
	e := NewDefaultEngine(repo, led, &recordingNotifier{}, gate, nil, zap.NewNop())
	e.now = func() time.Time {
		return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	seat, err := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Member taps in on two devices at once. Both requests read the
	// seat as confirmed before either holds the per-customer lock.
	gate.armed = true
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- e.CheckIn(ctx, seat.ID)
		}()
	}
	<-gate.entered
	<-gate.entered
	close(gate.proceed)

	first, second := <-errs, <-errs
	if first != nil && second != nil {
		t.Fatalf("both check-ins failed: %v / %v", first, second)
	}
	if first == nil && second == nil {
		t.Fatalf("both check-ins reported success")
	}
	loser := first
	if loser == nil {
		loser = second
	}
	if loser != ErrInvalidState {
		t.Fatalf("losing check-in returned %v, want ErrInvalidState", loser)
	}
	if led.credits != 9 {
		t.Fatalf("credits %d after one attendance, want 9", led.credits)
	}
	got, _ := repo.GetByID(ctx, seat.ID)
	if got.Status != models.SeatStatusAttended {
		t.Fatalf("seat status %s", got.Status)
	}
}

func TestConcurrentCancelRefundsOnce(t *testing.T) {
	repo := newMemSeatRepo()
	led := newFakeLedger(1)
	gate := newGateLocker("sched:")
	e := NewDefaultEngine(repo, led, &recordingNotifier{}, gate, nil, zap.NewNop())
	e.now = func() time.Time {
		return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	seat, err := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := e.CheckIn(ctx, seat.ID); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	// Two cancel requests both read the seat as a valid attendance
	// before either holds the day lock. Only the winner may refund; the
	// loser must land on the already-invalid no-op branch.
	gate.armed = true
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- e.Cancel(ctx, seat.ID)
		}()
	}
	<-gate.entered
	<-gate.entered
	close(gate.proceed)

	if err := <-errs; err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if led.refundCalls != 1 {
		t.Fatalf("ledger asked to refund %d times, want 1", led.refundCalls)
	}
	if led.credits != 1 {
		t.Fatalf("credits %d after cancel, want 1", led.credits)
	}
	got, _ := repo.GetByID(ctx, seat.ID)
	if got.Valid {
		t.Fatalf("cancelled seat still valid")
	}
}

func TestCancelUnknownSeat(t *testing.T) {
	e := newTestEngine(newMemSeatRepo(), newFakeLedger(0), &recordingNotifier{})
	if err := e.Cancel(context.Background(), "no-such-seat"); err != ErrSeatNotFound {
		t.Fatalf("expected ErrSeatNotFound, got %v", err)
	}
}

func TestCheckInRequiresConfirmedSeat(t *testing.T) {
	repo := newMemSeatRepo()
	e := newTestEngine(repo, newFakeLedger(10), &recordingNotifier{})
	ctx := context.Background()

	seat, _ := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err := e.CheckIn(ctx, seat.ID); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState for unconfirmed seat, got %v", err)
	}
}

func TestCheckInBlockedWithoutCredit(t *testing.T) {
	repo := newMemSeatRepo()
	led := newFakeLedger(0)
	e := newTestEngine(repo, led, &recordingNotifier{})
	ctx := context.Background()

	seat, _ := e.Reserve(ctx, customerReserve("c1", "u1", 600, 660, models.PriorityPrivate))
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := e.CheckIn(ctx, seat.ID); err != ledger.ErrInsufficientCredit {
		t.Fatalf("expected ErrInsufficientCredit, got %v", err)
	}
	got, _ := repo.GetByID(ctx, seat.ID)
	if got.Status != models.SeatStatusConfirmed {
		t.Fatalf("failed check-in moved status to %s", got.Status)
	}
}

func TestTrialCheckInDoesNotTouchLedger(t *testing.T) {
	repo := newMemSeatRepo()
	led := newFakeLedger(0)
	e := newTestEngine(repo, led, &recordingNotifier{})
	ctx := context.Background()

	seat, _ := e.Reserve(ctx, customerReserve("c1", "u-trial", 600, 660, models.PriorityExperience))
	if err := e.Confirm(ctx, seat.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := e.CheckIn(ctx, seat.ID); err != nil {
		t.Fatalf("trial check-in should not need credit: %v", err)
	}
}

func TestCustomerCannotReserveConfirmed(t *testing.T) {
	e := newTestEngine(newMemSeatRepo(), newFakeLedger(10), &recordingNotifier{})
	req := customerReserve("c1", "u1", 600, 660, models.PriorityPrivate)
	req.Status = models.SeatStatusConfirmed
	if _, err := e.Reserve(context.Background(), req); err != ErrNotAllowed {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
}

func coachBackfill(start, end int) ReserveRequest {
	return ReserveRequest{
		Actor:      ActorCoach,
		BizID:      "biz-1",
		CoachID:    "c1",
		CustomerID: "u1",
		Date:       20260105,
		Start:      start,
		End:        end,
		Priority:   models.PriorityPrivate,
		Status:     models.SeatStatusAttended,
	}
}

func TestCoachBackfillConsumesCredit(t *testing.T) {
	repo := newMemSeatRepo()
	led := newFakeLedger(1)
	e := newTestEngine(repo, led, &recordingNotifier{})
	ctx := context.Background()

	seat, err := e.Reserve(ctx, coachBackfill(600, 660))
	if err != nil {
		t.Fatalf("backfill failed: %v", err)
	}
	if seat.CheckedInAt == nil {
		t.Fatalf("backfilled seat missing check-in stamp")
	}
	if led.credits != 0 {
		t.Fatalf("backfill did not deduct")
	}

	// A second backfill with the pool empty must refuse, and the refused
	// entry may not linger and block the window.
	if _, err := e.Reserve(ctx, coachBackfill(700, 760)); err != ledger.ErrInsufficientCredit {
		t.Fatalf("expected ErrInsufficientCredit, got %v", err)
	}
	valid, _ := repo.ListByCoachDate(ctx, "c1", 20260105, true)
	if len(valid) != 1 {
		t.Fatalf("refused backfill left a seat behind: %d valid seats", len(valid))
	}
}

// insertFailSeatRepo refuses every insert, standing in for a write that
// dies at the database.
type insertFailSeatRepo struct {
	*memSeatRepo
}

func (r *insertFailSeatRepo) Insert(context.Context, *models.Seat) error {
	return errors.New("write concern failed")
}

func TestCoachBackfillFailedInsertCostsNothing(t *testing.T) {
	led := newFakeLedger(1)
	e := newTestEngine(newMemSeatRepo(), led, &recordingNotifier{})
	e.Seats = &insertFailSeatRepo{memSeatRepo: newMemSeatRepo()}

	if _, err := e.Reserve(context.Background(), coachBackfill(600, 660)); err == nil {
		t.Fatalf("expected insert failure to surface")
	}
	if led.credits != 1 {
		t.Fatalf("failed insert consumed a credit, remaining %d", led.credits)
	}
}
