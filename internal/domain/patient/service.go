package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/refdata"
	"github.com/dosetrack/dosetrack/internal/platform/schedule"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// CreateInput carries a new patient record. Medication times are
// textual and parsed before storage.
type CreateInput struct {
	Name      string  `json:"name"`
	IIN       string  `json:"iin"`
	Phone     string  `json:"phone"`
	Morning   *string `json:"morning,omitempty"`
	Afternoon *string `json:"afternoon,omitempty"`
	Evening   *string `json:"evening,omitempty"`
}

func validIIN(iin string) bool {
	if len(iin) != 12 {
		return false
	}
	for _, c := range iin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseOptionalTime(s *string) (*schedule.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	t, err := schedule.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Patient, error) {
	if in.Name == "" {
		return nil, apperr.E(apperr.Validation, "name is required")
	}
	if !validIIN(in.IIN) {
		return nil, apperr.E(apperr.Validation, "iin must be exactly 12 digits")
	}
	if in.Phone == "" {
		return nil, apperr.E(apperr.Validation, "phone is required")
	}

	morning, err := parseOptionalTime(in.Morning)
	if err != nil {
		return nil, err
	}
	afternoon, err := parseOptionalTime(in.Afternoon)
	if err != nil {
		return nil, err
	}
	evening, err := parseOptionalTime(in.Evening)
	if err != nil {
		return nil, err
	}

	p := &Patient{
		Name:  in.Name,
		IIN:   in.IIN,
		Phone: in.Phone,
		MedicationTimes: MedicationTimes{
			Morning:   morning,
			Afternoon: afternoon,
			Evening:   evening,
		},
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// GetProfile returns the patient record with its linked doctors and
// hospitals.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doctors, err := s.patients.ListDoctors(ctx, id)
	if err != nil {
		return nil, err
	}
	hospitals, err := s.patients.ListHospitals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{Patient: *p, Doctors: doctors, Hospitals: hospitals}, nil
}

func (s *Service) ListDoctors(ctx context.Context, patientID uuid.UUID) ([]Doctor, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.patients.ListDoctors(ctx, patientID)
}

// UpdateTimesInput is a partial update: only provided slots change.
type UpdateTimesInput struct {
	Morning   *string `json:"morning,omitempty"`
	Afternoon *string `json:"afternoon,omitempty"`
	Evening   *string `json:"evening,omitempty"`
}

// UpdateMedicationTimes parses the provided slot times and stores the
// merged preference set. Slots absent from the input keep their stored
// value.
func (s *Service) UpdateMedicationTimes(ctx context.Context, id uuid.UUID, in UpdateTimesInput) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	times := p.MedicationTimes
	if in.Morning != nil {
		if times.Morning, err = parseOptionalTime(in.Morning); err != nil {
			return nil, err
		}
	}
	if in.Afternoon != nil {
		if times.Afternoon, err = parseOptionalTime(in.Afternoon); err != nil {
			return nil, err
		}
	}
	if in.Evening != nil {
		if times.Evening, err = parseOptionalTime(in.Evening); err != nil {
			return nil, err
		}
	}

	if err := s.patients.UpdateMedicationTimes(ctx, id, times); err != nil {
		return nil, err
	}
	p.MedicationTimes = times
	return p, nil
}

func (s *Service) Search(ctx context.Context, query string) ([]*Patient, error) {
	if query == "" {
		return nil, apperr.E(apperr.Validation, "search query is required")
	}
	return s.patients.Search(ctx, query, refdata.DefaultSearchLimit)
}
