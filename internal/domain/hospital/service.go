package hospital

import (
	"context"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/refdata"
)

// patientChecker and doctorChecker are the slices of the other
// registries this service needs. The patient and doctor services
// satisfy them.
type patientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type doctorChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	hospitals Repository
	patients  patientChecker
	doctors   doctorChecker
}

func NewService(hospitals Repository, patients patientChecker, doctors doctorChecker) *Service {
	return &Service{hospitals: hospitals, patients: patients, doctors: doctors}
}

type CreateInput struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	RegNumber string `json:"reg_number"`
	GISLink   string `json:"gis_link"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Hospital, error) {
	if in.Name == "" {
		return nil, apperr.E(apperr.Validation, "name is required")
	}
	if in.Address == "" {
		return nil, apperr.E(apperr.Validation, "address is required")
	}

	h := &Hospital{
		Name:      in.Name,
		Address:   in.Address,
		RegNumber: in.RegNumber,
		GISLink:   in.GISLink,
	}
	if err := s.hospitals.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.hospitals.GetByID(ctx, id)
}

// AssignDoctor links a doctor to the hospital. Repeated assignment is
// a no-op.
func (s *Service) AssignDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID) error {
	if _, err := s.hospitals.GetByID(ctx, hospitalID); err != nil {
		return err
	}
	ok, err := s.doctors.Exists(ctx, doctorID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.E(apperr.NotFound, "doctor %s not found", doctorID)
	}
	return s.hospitals.AssignDoctor(ctx, hospitalID, doctorID)
}

// AssignPatient links a patient to the hospital. Repeated assignment
// is a no-op.
func (s *Service) AssignPatient(ctx context.Context, hospitalID, patientID uuid.UUID) error {
	if _, err := s.hospitals.GetByID(ctx, hospitalID); err != nil {
		return err
	}
	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.E(apperr.NotFound, "patient %s not found", patientID)
	}
	return s.hospitals.AssignPatient(ctx, hospitalID, patientID)
}

func (s *Service) ListMembers(ctx context.Context, hospitalID uuid.UUID) (*Members, error) {
	if _, err := s.hospitals.GetByID(ctx, hospitalID); err != nil {
		return nil, err
	}
	return s.hospitals.ListMembers(ctx, hospitalID)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Hospital, error) {
	if query == "" {
		return nil, apperr.E(apperr.Validation, "search query is required")
	}
	return s.hospitals.Search(ctx, query, refdata.DefaultSearchLimit)
}
