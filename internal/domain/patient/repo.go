package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	UpdateMedicationTimes(ctx context.Context, id uuid.UUID, times MedicationTimes) error
	Search(ctx context.Context, query string, limit int) ([]*Patient, error)
	ListDoctors(ctx context.Context, patientID uuid.UUID) ([]Doctor, error)
	ListHospitals(ctx context.Context, patientID uuid.UUID) ([]Hospital, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
