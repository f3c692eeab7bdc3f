package doseevent

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/domain/doctor"
	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/auth"
	"github.com/dosetrack/dosetrack/internal/platform/schedule"
)

type mockRepo struct {
	events        map[uuid.UUID]*DoseEvent
	prescriptions map[uuid.UUID][2]int // patientID -> {withItems, withoutItems}
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		events:        make(map[uuid.UUID]*DoseEvent),
		prescriptions: make(map[uuid.UUID][2]int),
	}
}

func (m *mockRepo) add(e DoseEvent) *DoseEvent {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.events[e.ID] = &e
	return &e
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*DoseEvent, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, apperr.E(apperr.NotFound, "dose event %s not found", id)
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) Complete(ctx context.Context, id uuid.UUID) (*DoseEvent, bool, error) {
	e, ok := m.events[id]
	if !ok || e.Terminal() {
		return nil, false, nil
	}
	e.IsCompleted = true
	cp := *e
	return &cp, true, nil
}

func (m *mockRepo) Delay(ctx context.Context, id uuid.UUID, by time.Duration) (*DoseEvent, bool, error) {
	e, ok := m.events[id]
	if !ok || e.Terminal() {
		return nil, false, nil
	}
	e.MissedCount++
	if e.MissedCount >= MaxMissed {
		e.IsExpired = true
	} else {
		e.ScheduledAt = e.ScheduledAt.Add(by)
	}
	cp := *e
	return &cp, true, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*DoseEvent, error) {
	var out []*DoseEvent
	for _, e := range m.events {
		if e.PatientID == patientID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) ListForRange(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*DoseEvent, error) {
	var out []*DoseEvent
	for _, e := range m.events {
		if e.PatientID == patientID && !e.ScheduledAt.Before(from) && e.ScheduledAt.Before(to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) CountPrescriptions(ctx context.Context, patientID uuid.UUID) (int, int, error) {
	counts := m.prescriptions[patientID]
	return counts[0], counts[1], nil
}

type mockRoster map[uuid.UUID][]doctor.RosterEntry

func (m mockRoster) ListPatients(ctx context.Context, doctorID uuid.UUID) ([]doctor.RosterEntry, error) {
	return m[doctorID], nil
}

func almaty(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Almaty")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func newTestService(t *testing.T) (*Service, *mockRepo, mockRoster) {
	t.Helper()
	repo := newMockRepo()
	roster := mockRoster{}
	return NewService(repo, roster, almaty(t)), repo, roster
}

func patientActor(id uuid.UUID) auth.Actor {
	return auth.Actor{ID: id, Role: auth.RolePatient}
}

func TestApplyAction_Complete(t *testing.T) {
	svc, repo, _ := newTestService(t)
	patientID := uuid.New()
	e := repo.add(DoseEvent{PatientID: patientID, ScheduledAt: time.Now()})

	updated, err := svc.ApplyAction(context.Background(), patientActor(patientID), e.ID, ActionComplete)
	if err != nil {
		t.Fatalf("ApplyAction() error: %v", err)
	}
	if !updated.IsCompleted {
		t.Error("expected event to be completed")
	}
	if updated.IsExpired || updated.MissedCount != 0 {
		t.Error("complete must not touch missed count or expiry")
	}
}

func TestApplyAction_DelayShiftsOneHour(t *testing.T) {
	svc, repo, _ := newTestService(t)
	patientID := uuid.New()
	at := time.Date(2024, 3, 10, 8, 0, 0, 0, almaty(t))
	e := repo.add(DoseEvent{PatientID: patientID, ScheduledAt: at})

	updated, err := svc.ApplyAction(context.Background(), patientActor(patientID), e.ID, ActionDelay)
	if err != nil {
		t.Fatalf("ApplyAction() error: %v", err)
	}
	if updated.MissedCount != 1 {
		t.Errorf("missed count = %d, want 1", updated.MissedCount)
	}
	if !updated.ScheduledAt.Equal(at.Add(time.Hour)) {
		t.Errorf("scheduled at %v, want %v", updated.ScheduledAt, at.Add(time.Hour))
	}
	if updated.Terminal() {
		t.Error("event must stay pending after first delay")
	}
}

func TestApplyAction_ThirdDelayExpires(t *testing.T) {
	svc, repo, _ := newTestService(t)
	patientID := uuid.New()
	at := time.Date(2024, 3, 10, 8, 0, 0, 0, almaty(t))
	e := repo.add(DoseEvent{PatientID: patientID, ScheduledAt: at, MissedCount: 2})

	updated, err := svc.ApplyAction(context.Background(), patientActor(patientID), e.ID, ActionDelay)
	if err != nil {
		t.Fatalf("ApplyAction() error: %v", err)
	}
	if !updated.IsExpired {
		t.Error("expected event to expire at missed count 3")
	}
	if updated.MissedCount != MaxMissed {
		t.Errorf("missed count = %d, want %d", updated.MissedCount, MaxMissed)
	}
	if !updated.ScheduledAt.Equal(at) {
		t.Errorf("expiring delay must leave the timestamp unchanged, got %v", updated.ScheduledAt)
	}
}

func TestApplyAction_FinalizedRejectsEverything(t *testing.T) {
	svc, repo, _ := newTestService(t)
	patientID := uuid.New()
	completed := repo.add(DoseEvent{PatientID: patientID, IsCompleted: true})
	expired := repo.add(DoseEvent{PatientID: patientID, IsExpired: true, MissedCount: 3})

	for _, id := range []uuid.UUID{completed.ID, expired.ID} {
		for _, action := range []Action{ActionComplete, ActionDelay} {
			_, err := svc.ApplyAction(context.Background(), patientActor(patientID), id, action)
			if !apperr.IsKind(err, apperr.AlreadyFinalized) {
				t.Errorf("event %s action %s: expected already finalized, got %v", id, action, err)
			}
		}
	}
}

func TestApplyAction_UnknownEventAndAction(t *testing.T) {
	svc, repo, _ := newTestService(t)
	patientID := uuid.New()
	e := repo.add(DoseEvent{PatientID: patientID})

	_, err := svc.ApplyAction(context.Background(), patientActor(patientID), uuid.New(), ActionComplete)
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	_, err = svc.ApplyAction(context.Background(), patientActor(patientID), e.ID, Action("snooze"))
	if !apperr.IsKind(err, apperr.InvalidAction) {
		t.Errorf("expected invalid action, got %v", err)
	}
}

func TestApplyAction_OtherPatientsEvent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	e := repo.add(DoseEvent{PatientID: uuid.New()})

	_, err := svc.ApplyAction(context.Background(), patientActor(uuid.New()), e.ID, ActionComplete)
	if !apperr.IsKind(err, apperr.Forbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestApplyAction_NonPatientRoles(t *testing.T) {
	svc, repo, _ := newTestService(t)
	e := repo.add(DoseEvent{PatientID: uuid.New()})

	for _, role := range []auth.Role{auth.RoleSupervisor, auth.RoleDoctor} {
		a := auth.Actor{ID: uuid.New(), Role: role}
		for _, action := range []Action{ActionComplete, ActionDelay} {
			_, err := svc.ApplyAction(context.Background(), a, e.ID, action)
			if !apperr.IsKind(err, apperr.Forbidden) {
				t.Errorf("role %s action %s: expected forbidden, got %v", role, action, err)
			}
		}
	}

	stored := repo.events[e.ID]
	if stored.IsCompleted || stored.IsExpired || stored.MissedCount != 0 {
		t.Errorf("event must be untouched after rejected actions, got %+v", stored)
	}
}

func TestListByMonth(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := almaty(t)
	patientID := uuid.New()

	march := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	april := time.Date(2024, 4, 2, 19, 30, 0, 0, loc)

	repo.add(DoseEvent{PatientID: patientID, ScheduledAt: march, IsCompleted: true})
	repo.add(DoseEvent{PatientID: patientID, ScheduledAt: march.Add(5 * time.Hour), IsExpired: true, MissedCount: 3})
	repo.add(DoseEvent{PatientID: patientID, ScheduledAt: march.Add(24 * time.Hour), MissedCount: 2})
	repo.add(DoseEvent{PatientID: patientID, ScheduledAt: april})

	groups, err := svc.ListByMonth(context.Background(), patientID)
	if err != nil {
		t.Fatalf("ListByMonth() error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 month groups, got %d", len(groups))
	}

	// Newest first.
	if groups[0].Month != "2024-04" || groups[1].Month != "2024-03" {
		t.Fatalf("unexpected month order: %s, %s", groups[0].Month, groups[1].Month)
	}

	m := groups[1]
	if m.Completed != 1 || m.Expired != 1 {
		t.Errorf("march counters completed=%d expired=%d, want 1/1", m.Completed, m.Expired)
	}
	if m.MissedTotal != 2 {
		t.Errorf("march missed total = %d, want 2 (terminal events excluded)", m.MissedTotal)
	}
	if len(m.Events) != 3 {
		t.Errorf("march events = %d, want 3", len(m.Events))
	}

	a := groups[0]
	if len(a.Events) != 1 || a.Events[0].Time != "19:30" {
		t.Errorf("expected april event annotated 19:30, got %+v", a.Events)
	}
}

func TestListForToday(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := almaty(t)
	patientID := uuid.New()

	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	repo.add(DoseEvent{PatientID: patientID, ScheduledAt: today})
	repo.add(DoseEvent{PatientID: patientID, ScheduledAt: today.AddDate(0, 0, -1)})
	repo.add(DoseEvent{PatientID: patientID, ScheduledAt: today.AddDate(0, 0, 1)})
	repo.add(DoseEvent{PatientID: uuid.New(), ScheduledAt: today})

	views, err := svc.ListForToday(context.Background(), patientID)
	if err != nil {
		t.Fatalf("ListForToday() error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 event today, got %d", len(views))
	}
	if views[0].Time != "12:00" {
		t.Errorf("expected annotated time 12:00, got %s", views[0].Time)
	}
}

func TestScore_NoEvents(t *testing.T) {
	svc, _, _ := newTestService(t)
	score, err := svc.Score(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if score != 0 {
		t.Errorf("expected score 0 with no events, got %f", score)
	}
}

func TestScore_Formula(t *testing.T) {
	svc, repo, _ := newTestService(t)
	patientID := uuid.New()

	// 4 events, 1 with misses; 1 active prescription, 1 without items.
	repo.add(DoseEvent{PatientID: patientID, MissedCount: 2})
	for i := 0; i < 3; i++ {
		repo.add(DoseEvent{PatientID: patientID})
	}
	repo.prescriptions[patientID] = [2]int{1, 1}

	score, err := svc.Score(context.Background(), patientID)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	want := 10 - 1.0/4.0*10 + 1 - 0.5
	if score != want {
		t.Errorf("score = %f, want %f", score, want)
	}
}

func TestScore_ClampedOnRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		svc, repo, _ := newTestService(t)
		patientID := uuid.New()

		total := rng.Intn(20) + 1
		for j := 0; j < total; j++ {
			repo.add(DoseEvent{PatientID: patientID, MissedCount: rng.Intn(4)})
		}
		repo.prescriptions[patientID] = [2]int{rng.Intn(15), rng.Intn(30)}

		score, err := svc.Score(context.Background(), patientID)
		if err != nil {
			t.Fatalf("Score() error: %v", err)
		}
		if score < 0 || score > 10 {
			t.Fatalf("score %f out of [0,10]", score)
		}
	}
}

func TestScoresForDoctor(t *testing.T) {
	svc, repo, roster := newTestService(t)
	doctorID := uuid.New()
	patientA := uuid.New()
	patientB := uuid.New()

	roster[doctorID] = []doctor.RosterEntry{
		{ID: patientA, Name: "Aruzhan"},
		{ID: patientB, Name: "Bekzat"},
	}
	repo.add(DoseEvent{PatientID: patientA, Slot: schedule.Morning})

	scores, err := svc.ScoresForDoctor(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("ScoresForDoctor() error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 roster scores, got %d", len(scores))
	}
	if scores[0].Name != "Aruzhan" || scores[0].Score != 10 {
		t.Errorf("patient A: got %+v, want score 10", scores[0])
	}
	if scores[1].Score != 0 {
		t.Errorf("patient B with no events should score 0, got %f", scores[1].Score)
	}
}
