package doseevent

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*DoseEvent, error)
	// Complete and Delay update only non-terminal events and return
	// false when the event was already finalized.
	Complete(ctx context.Context, id uuid.UUID) (*DoseEvent, bool, error)
	Delay(ctx context.Context, id uuid.UUID, by time.Duration) (*DoseEvent, bool, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*DoseEvent, error)
	ListForRange(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*DoseEvent, error)
	// CountPrescriptions returns how many of the patient's
	// prescriptions have line items and how many have none.
	CountPrescriptions(ctx context.Context, patientID uuid.UUID) (withItems, withoutItems int, err error)
}
