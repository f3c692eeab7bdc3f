package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/domain/doseevent"
	"github.com/dosetrack/dosetrack/pkg/pagination"
)

type Repository interface {
	Insert(ctx context.Context, p *Prescription) error
	InsertLineItem(ctx context.Context, li *LineItem) error
	InsertDoseEvents(ctx context.Context, events []doseevent.DoseEvent) error
	LinkDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, page pagination.Params) ([]*Prescription, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, page pagination.Params) ([]*Prescription, int, error)
	ListLineItems(ctx context.Context, prescriptionID uuid.UUID) ([]*LineItem, error)
}
