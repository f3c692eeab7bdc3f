package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a scheduled visit between a doctor and a patient.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
