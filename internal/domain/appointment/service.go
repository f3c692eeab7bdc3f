package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
)

type patientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type doctorChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	appointments Repository
	patients     patientChecker
	doctors      doctorChecker
	loc          *time.Location
	now          func() time.Time
}

func NewService(appointments Repository, patients patientChecker, doctors doctorChecker, loc *time.Location) *Service {
	return &Service{
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		loc:          loc,
		now:          time.Now,
	}
}

type CreateInput struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	StartsAt  time.Time `json:"starts_at"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if in.StartsAt.IsZero() {
		return nil, apperr.E(apperr.Validation, "starts_at is required")
	}
	ok, err := s.doctors.Exists(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.E(apperr.NotFound, "doctor %s not found", in.DoctorID)
	}
	ok, err = s.patients.Exists(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.E(apperr.NotFound, "patient %s not found", in.PatientID)
	}

	a := &Appointment{
		DoctorID:  in.DoctorID,
		PatientID: in.PatientID,
		StartsAt:  in.StartsAt,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Upcoming lists the patient's appointments from now on, soonest first.
func (s *Service) Upcoming(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByPatientFrom(ctx, patientID, s.now().In(s.loc))
}

// Past lists the patient's appointments before now, most recent first.
func (s *Service) Past(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByPatientBefore(ctx, patientID, s.now().In(s.loc))
}

// ForDoctorMonth lists a doctor's appointments within one calendar
// month in the clinic zone.
func (s *Service) ForDoctorMonth(ctx context.Context, doctorID uuid.UUID, year, month int) ([]*Appointment, error) {
	if month < 1 || month > 12 {
		return nil, apperr.E(apperr.Validation, "month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, apperr.E(apperr.Validation, "year %d is out of range", year)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	return s.appointments.ListByDoctorRange(ctx, doctorID, from, from.AddDate(0, 1, 0))
}

// PurgeStale deletes appointments older than the start of the previous
// calendar month and reports how many were removed.
func (s *Service) PurgeStale(ctx context.Context) (int64, error) {
	now := s.now().In(s.loc)
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc).AddDate(0, -1, 0)
	return s.appointments.DeleteBefore(ctx, cutoff)
}
