package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Search(ctx context.Context, query string, limit int) ([]*Doctor, error)
	ListPatients(ctx context.Context, doctorID uuid.UUID) ([]RosterEntry, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
