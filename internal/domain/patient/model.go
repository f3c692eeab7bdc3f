package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/platform/schedule"
)

// Patient maps to the patient table.
type Patient struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	IIN             string          `db:"iin" json:"iin"`
	Phone           string          `db:"phone" json:"phone"`
	MedicationTimes MedicationTimes `json:"medication_times"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// MedicationTimes holds the patient's optional per-slot intake times.
// A nil slot means the clinic default applies.
type MedicationTimes struct {
	Morning   *schedule.TimeOfDay `json:"morning,omitempty"`
	Afternoon *schedule.TimeOfDay `json:"afternoon,omitempty"`
	Evening   *schedule.TimeOfDay `json:"evening,omitempty"`
}

// Preferences converts the stored times into schedule preferences.
func (m MedicationTimes) Preferences() schedule.Preferences {
	return schedule.Preferences{
		Morning:   m.Morning,
		Afternoon: m.Afternoon,
		Evening:   m.Evening,
	}
}

// Profile is the patient's own view: the record plus everything linked
// to it.
type Profile struct {
	Patient   Patient    `json:"patient"`
	Doctors   []Doctor   `json:"doctors"`
	Hospitals []Hospital `json:"hospitals"`
}

// Doctor is the roster projection of a linked doctor. The full record
// lives in the doctor package; relations queries only need these
// columns.
type Doctor struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Speciality string    `json:"speciality"`
}

// Hospital is the projection of a linked hospital.
type Hospital struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
}
