package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/refdata"
)

type Service struct {
	doctors      Repository
	specialities *refdata.List
}

func NewService(doctors Repository, specialities *refdata.List) *Service {
	return &Service{doctors: doctors, specialities: specialities}
}

type CreateInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Speciality string `json:"speciality"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Doctor, error) {
	if in.Name == "" {
		return nil, apperr.E(apperr.Validation, "name is required")
	}
	if in.Phone == "" {
		return nil, apperr.E(apperr.Validation, "phone is required")
	}
	speciality, ok := s.specialities.Canonical(in.Speciality)
	if !ok {
		return nil, apperr.E(apperr.Validation, "unknown speciality: %s", in.Speciality)
	}

	d := &Doctor{Name: in.Name, Phone: in.Phone, Speciality: speciality}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, doctorID uuid.UUID) ([]RosterEntry, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.doctors.ListPatients(ctx, doctorID)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Doctor, error) {
	if query == "" {
		return nil, apperr.E(apperr.Validation, "search query is required")
	}
	return s.doctors.Search(ctx, query, refdata.DefaultSearchLimit)
}
