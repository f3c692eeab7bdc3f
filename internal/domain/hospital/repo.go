package hospital

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	Search(ctx context.Context, query string, limit int) ([]*Hospital, error)
	AssignDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID) error
	AssignPatient(ctx context.Context, hospitalID, patientID uuid.UUID) error
	ListMembers(ctx context.Context, hospitalID uuid.UUID) (*Members, error)
}
