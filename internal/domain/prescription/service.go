package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/domain/doseevent"
	"github.com/dosetrack/dosetrack/internal/domain/patient"
	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/refdata"
	"github.com/dosetrack/dosetrack/internal/platform/schedule"
	"github.com/dosetrack/dosetrack/pkg/pagination"
)

// patientDirectory is the slice of the patient registry the expansion
// needs: existence plus stored medication times.
type patientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type doctorDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TxRunner runs fn atomically. In production it wraps db.WithTx over
// the pool; tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	prescriptions Repository
	patients      patientDirectory
	doctors       doctorDirectory
	drugs         *refdata.List
	loc           *time.Location
	runTx         TxRunner
}

func NewService(
	prescriptions Repository,
	patients patientDirectory,
	doctors doctorDirectory,
	drugs *refdata.List,
	loc *time.Location,
	runTx TxRunner,
) *Service {
	return &Service{
		prescriptions: prescriptions,
		patients:      patients,
		doctors:       doctors,
		drugs:         drugs,
		loc:           loc,
		runTx:         runTx,
	}
}

// LineItemInput is one requested drug regimen.
type LineItemInput struct {
	Drug        string  `json:"drug"`
	Days        int     `json:"days"`
	DosesPerDay int     `json:"doses_per_day"`
	Note        string  `json:"note"`
	StartDate   *string `json:"start_date,omitempty"` // YYYY-MM-DD, defaults to today
}

// CreateInput is a doctor's prescription request.
type CreateInput struct {
	PatientID          uuid.UUID       `json:"patient_id"`
	Disease            string          `json:"disease"`
	DiseaseDescription string          `json:"disease_description"`
	TryComment         string          `json:"try_comment"`
	LineItems          []LineItemInput `json:"line_items"`
}

// validateLineItem checks one line item without touching storage. The
// canonical drug spelling is returned so the stored row matches the
// formulary.
func (s *Service) validateLineItem(i int, in LineItemInput) (string, error) {
	if _, err := schedule.SlotsFor(in.DosesPerDay); err != nil {
		return "", apperr.E(apperr.Validation, "line item %d: doses per day must be between 1 and 3, got %d", i, in.DosesPerDay)
	}
	if in.Days < 1 {
		return "", apperr.E(apperr.Validation, "line item %d: days must be at least 1, got %d", i, in.Days)
	}
	if in.Drug == "" {
		return "", apperr.E(apperr.Validation, "line item %d: drug is required", i)
	}
	drug, ok := s.drugs.Canonical(in.Drug)
	if !ok {
		return "", apperr.E(apperr.Validation, "line item %d: unknown drug %q", i, in.Drug)
	}
	return drug, nil
}

func (s *Service) resolveStartDate(in *LineItemInput, now time.Time) (time.Time, error) {
	if in.StartDate == nil {
		y, m, d := now.In(s.loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, s.loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", *in.StartDate, s.loc)
	if err != nil {
		return time.Time{}, apperr.E(apperr.Validation, "start_date must be YYYY-MM-DD, got %q", *in.StartDate)
	}
	return t, nil
}

// Create validates the whole request, then materializes the
// prescription, its line items and every dose event in one
// transaction. Nothing is written unless everything passes. Two
// identical requests create two independent prescriptions.
func (s *Service) Create(ctx context.Context, doctorID uuid.UUID, in CreateInput) (*CreateResult, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.E(apperr.Validation, "patient_id is required")
	}
	if in.Disease == "" {
		return nil, apperr.E(apperr.Validation, "disease is required")
	}
	if len(in.LineItems) == 0 {
		return nil, apperr.E(apperr.Validation, "at least one line item is required")
	}

	// Validate everything before the first write.
	now := time.Now()
	drugs := make([]string, len(in.LineItems))
	starts := make([]time.Time, len(in.LineItems))
	for i, li := range in.LineItems {
		drug, err := s.validateLineItem(i, li)
		if err != nil {
			return nil, err
		}
		start, err := s.resolveStartDate(&in.LineItems[i], now)
		if err != nil {
			return nil, err
		}
		drugs[i] = drug
		starts[i] = start
	}

	ok, err := s.doctors.Exists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.E(apperr.NotFound, "doctor %s not found", doctorID)
	}
	pat, err := s.patients.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	prefs := pat.MedicationTimes.Preferences()

	result := &CreateResult{}
	err = s.runTx(ctx, func(ctx context.Context) error {
		p := &Prescription{
			DoctorID:           doctorID,
			PatientID:          in.PatientID,
			Disease:            in.Disease,
			DiseaseDescription: in.DiseaseDescription,
			TryComment:         in.TryComment,
		}
		if err := s.prescriptions.Insert(ctx, p); err != nil {
			return err
		}
		result.Prescription = *p

		for i, liIn := range in.LineItems {
			li := &LineItem{
				PrescriptionID: p.ID,
				PatientID:      in.PatientID,
				DoctorID:       doctorID,
				Drug:           drugs[i],
				Days:           liIn.Days,
				DosesPerDay:    liIn.DosesPerDay,
				Note:           liIn.Note,
				StartDate:      starts[i],
			}
			if err := s.prescriptions.InsertLineItem(ctx, li); err != nil {
				return err
			}
			result.LineItems = append(result.LineItems, *li)

			doses, err := schedule.Expand(starts[i], liIn.Days, liIn.DosesPerDay, prefs, s.loc)
			if err != nil {
				return err
			}
			events := make([]doseevent.DoseEvent, len(doses))
			for j, d := range doses {
				events[j] = doseevent.DoseEvent{
					ID:          uuid.New(),
					LineItemID:  li.ID,
					PatientID:   in.PatientID,
					DoctorID:    doctorID,
					ScheduledAt: d.At,
					Slot:        d.Slot,
				}
				result.DoseEventIDs = append(result.DoseEventIDs, events[j].ID)
			}
			if err := s.prescriptions.InsertDoseEvents(ctx, events); err != nil {
				return err
			}
		}

		return s.prescriptions.LinkDoctorPatient(ctx, doctorID, in.PatientID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, page pagination.Params) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, page)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, page pagination.Params) ([]*Prescription, int, error) {
	return s.prescriptions.ListByDoctor(ctx, doctorID, page)
}

func (s *Service) ListLineItems(ctx context.Context, prescriptionID uuid.UUID) ([]*LineItem, error) {
	if _, err := s.prescriptions.GetByID(ctx, prescriptionID); err != nil {
		return nil, err
	}
	return s.prescriptions.ListLineItems(ctx, prescriptionID)
}
