package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Phone      string    `db:"phone" json:"phone"`
	Speciality string    `db:"speciality" json:"speciality"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RosterEntry is a patient on the doctor's roster.
type RosterEntry struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	IIN   string    `json:"iin"`
	Phone string    `json:"phone"`
}
