package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription maps to the prescription table.
type Prescription struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	DoctorID           uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID          uuid.UUID `db:"patient_id" json:"patient_id"`
	Disease            string    `db:"disease" json:"disease"`
	DiseaseDescription string    `db:"disease_description" json:"disease_description,omitempty"`
	TryComment         string    `db:"try_comment" json:"try_comment,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// LineItem maps to the line_item table: one drug regimen within a
// prescription. Immutable once its dose events exist.
type LineItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Drug           string    `db:"drug" json:"drug"`
	Days           int       `db:"days" json:"days"`
	DosesPerDay    int       `db:"doses_per_day" json:"doses_per_day"`
	Note           string    `db:"note" json:"note,omitempty"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CreateResult is what a successful expansion returns: the persisted
// prescription and everything materialized under it.
type CreateResult struct {
	Prescription Prescription `json:"prescription"`
	LineItems    []LineItem   `json:"line_items"`
	DoseEventIDs []uuid.UUID  `json:"dose_event_ids"`
}
