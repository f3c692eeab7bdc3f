package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	ListByPatientFrom(ctx context.Context, patientID uuid.UUID, from time.Time) ([]*Appointment, error)
	ListByPatientBefore(ctx context.Context, patientID uuid.UUID, before time.Time) ([]*Appointment, error)
	ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
