package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/domain/doseevent"
	"github.com/dosetrack/dosetrack/internal/domain/patient"
	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/refdata"
	"github.com/dosetrack/dosetrack/internal/platform/schedule"
	"github.com/dosetrack/dosetrack/pkg/pagination"
)

type mockRepo struct {
	prescriptions []Prescription
	lineItems     []LineItem
	events        []doseevent.DoseEvent
	links         map[[2]uuid.UUID]bool

	failDoseEvents bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{links: make(map[[2]uuid.UUID]bool)}
}

func (m *mockRepo) Insert(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.prescriptions = append(m.prescriptions, *p)
	return nil
}

func (m *mockRepo) InsertLineItem(ctx context.Context, li *LineItem) error {
	li.ID = uuid.New()
	m.lineItems = append(m.lineItems, *li)
	return nil
}

func (m *mockRepo) InsertDoseEvents(ctx context.Context, events []doseevent.DoseEvent) error {
	if m.failDoseEvents {
		return apperr.E(apperr.Internal, "simulated insert failure")
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *mockRepo) LinkDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) error {
	m.links[[2]uuid.UUID{doctorID, patientID}] = true
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	for _, p := range m.prescriptions {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperr.E(apperr.NotFound, "prescription %s not found", id)
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, page pagination.Params) ([]*Prescription, int, error) {
	var out []*Prescription
	for i := range m.prescriptions {
		if m.prescriptions[i].PatientID == patientID {
			out = append(out, &m.prescriptions[i])
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, page pagination.Params) ([]*Prescription, int, error) {
	var out []*Prescription
	for i := range m.prescriptions {
		if m.prescriptions[i].DoctorID == doctorID {
			out = append(out, &m.prescriptions[i])
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListLineItems(ctx context.Context, prescriptionID uuid.UUID) ([]*LineItem, error) {
	var out []*LineItem
	for i := range m.lineItems {
		if m.lineItems[i].PrescriptionID == prescriptionID {
			out = append(out, &m.lineItems[i])
		}
	}
	return out, nil
}

type mockPatients map[uuid.UUID]*patient.Patient

func (m mockPatients) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m[id]
	if !ok {
		return nil, apperr.E(apperr.NotFound, "patient %s not found", id)
	}
	return p, nil
}

type mockDoctors map[uuid.UUID]bool

func (m mockDoctors) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m[id], nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	doctorID  uuid.UUID
	patientID uuid.UUID
	loc       *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Almaty")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	repo := newMockRepo()
	doctorID := uuid.New()
	patientID := uuid.New()
	patients := mockPatients{patientID: {ID: patientID, Name: "Aruzhan"}}
	doctors := mockDoctors{doctorID: true}
	drugs := refdata.NewRegistry().Drugs

	return &fixture{
		svc:       NewService(repo, patients, doctors, drugs, loc, passthroughTx),
		repo:      repo,
		doctorID:  doctorID,
		patientID: patientID,
		loc:       loc,
	}
}

func TestCreate_ExpandsLineItems(t *testing.T) {
	f := newFixture(t)
	start := "2024-03-10"

	result, err := f.svc.Create(context.Background(), f.doctorID, CreateInput{
		PatientID: f.patientID,
		Disease:   "Hypertension",
		LineItems: []LineItemInput{
			{Drug: "amoxicillin", Days: 5, DosesPerDay: 2, StartDate: &start},
		},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if len(result.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(result.LineItems))
	}
	if result.LineItems[0].Drug != "Amoxicillin" {
		t.Errorf("expected canonical drug Amoxicillin, got %q", result.LineItems[0].Drug)
	}
	if len(result.DoseEventIDs) != 10 {
		t.Errorf("expected 10 dose events for 5 days x 2 doses, got %d", len(result.DoseEventIDs))
	}
	if len(f.repo.events) != 10 {
		t.Fatalf("expected 10 stored events, got %d", len(f.repo.events))
	}

	first := f.repo.events[0]
	wantFirst := time.Date(2024, 3, 10, 8, 0, 0, 0, f.loc)
	if !first.ScheduledAt.Equal(wantFirst) {
		t.Errorf("first event at %v, want %v", first.ScheduledAt, wantFirst)
	}
	if first.Slot != schedule.Morning {
		t.Errorf("first event slot %s, want morning", first.Slot)
	}
	if first.MissedCount != 0 || first.IsCompleted || first.IsExpired {
		t.Error("new events must start pending with zero missed count")
	}

	if !f.repo.links[[2]uuid.UUID{f.doctorID, f.patientID}] {
		t.Error("expected doctor and patient to be linked")
	}
}

func TestCreate_PatientPreferencesApply(t *testing.T) {
	f := newFixture(t)
	evening := schedule.TimeOfDay{Hour: 21, Minute: 15}
	f.svc.patients = mockPatients{f.patientID: {
		ID: f.patientID,
		MedicationTimes: patient.MedicationTimes{
			Evening: &evening,
		},
	}}

	start := "2024-03-10"
	_, err := f.svc.Create(context.Background(), f.doctorID, CreateInput{
		PatientID: f.patientID,
		Disease:   "Flu",
		LineItems: []LineItemInput{{Drug: "Paracetamol", Days: 1, DosesPerDay: 3, StartDate: &start}},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	last := f.repo.events[len(f.repo.events)-1]
	if last.Slot != schedule.Evening {
		t.Fatalf("last event slot %s, want evening", last.Slot)
	}
	want := time.Date(2024, 3, 10, 21, 15, 0, 0, f.loc)
	if !last.ScheduledAt.Equal(want) {
		t.Errorf("evening event at %v, want %v", last.ScheduledAt, want)
	}
}

func TestCreate_ValidationAbortsBeforeWrites(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		in   CreateInput
		kind apperr.Kind
	}{
		{
			"doses per day out of range",
			CreateInput{PatientID: f.patientID, Disease: "Flu",
				LineItems: []LineItemInput{
					{Drug: "Paracetamol", Days: 3, DosesPerDay: 1},
					{Drug: "Ibuprofen", Days: 3, DosesPerDay: 4},
				}},
			apperr.Validation,
		},
		{
			"days below one",
			CreateInput{PatientID: f.patientID, Disease: "Flu",
				LineItems: []LineItemInput{{Drug: "Paracetamol", Days: 0, DosesPerDay: 1}}},
			apperr.Validation,
		},
		{
			"unknown drug",
			CreateInput{PatientID: f.patientID, Disease: "Flu",
				LineItems: []LineItemInput{{Drug: "Snake Oil", Days: 3, DosesPerDay: 1}}},
			apperr.Validation,
		},
		{
			"no line items",
			CreateInput{PatientID: f.patientID, Disease: "Flu"},
			apperr.Validation,
		},
		{
			"missing disease",
			CreateInput{PatientID: f.patientID,
				LineItems: []LineItemInput{{Drug: "Paracetamol", Days: 3, DosesPerDay: 1}}},
			apperr.Validation,
		},
	}

	for _, tc := range cases {
		_, err := f.svc.Create(context.Background(), f.doctorID, tc.in)
		if !apperr.IsKind(err, tc.kind) {
			t.Errorf("%s: expected %v error, got %v", tc.name, tc.kind, err)
		}
	}

	if len(f.repo.prescriptions) != 0 || len(f.repo.lineItems) != 0 || len(f.repo.events) != 0 {
		t.Error("validation failures must not write anything")
	}
}

func TestCreate_UnknownActors(t *testing.T) {
	f := newFixture(t)
	valid := []LineItemInput{{Drug: "Paracetamol", Days: 1, DosesPerDay: 1}}

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateInput{
		PatientID: f.patientID, Disease: "Flu", LineItems: valid,
	})
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("unknown doctor: expected not found, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), f.doctorID, CreateInput{
		PatientID: uuid.New(), Disease: "Flu", LineItems: valid,
	})
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("unknown patient: expected not found, got %v", err)
	}
	if len(f.repo.prescriptions) != 0 {
		t.Error("failed lookups must not write anything")
	}
}

func TestCreate_DoubleCreateYieldsTwoPrescriptions(t *testing.T) {
	f := newFixture(t)
	in := CreateInput{
		PatientID: f.patientID,
		Disease:   "Flu",
		LineItems: []LineItemInput{{Drug: "Paracetamol", Days: 2, DosesPerDay: 1}},
	}

	first, err := f.svc.Create(context.Background(), f.doctorID, in)
	if err != nil {
		t.Fatalf("first Create() error: %v", err)
	}
	second, err := f.svc.Create(context.Background(), f.doctorID, in)
	if err != nil {
		t.Fatalf("second Create() error: %v", err)
	}

	if first.Prescription.ID == second.Prescription.ID {
		t.Error("expected two independent prescriptions")
	}
	if len(f.repo.prescriptions) != 2 {
		t.Errorf("expected 2 stored prescriptions, got %d", len(f.repo.prescriptions))
	}
}

func TestCreate_MidTransactionFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.repo.failDoseEvents = true

	_, err := f.svc.Create(context.Background(), f.doctorID, CreateInput{
		PatientID: f.patientID,
		Disease:   "Flu",
		LineItems: []LineItemInput{{Drug: "Paracetamol", Days: 2, DosesPerDay: 1}},
	})
	if err == nil {
		t.Fatal("expected error from dose event insert")
	}
	if len(f.repo.events) != 0 {
		t.Error("no events should be stored after the failure")
	}
}
