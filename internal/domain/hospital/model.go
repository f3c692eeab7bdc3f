package hospital

import (
	"time"

	"github.com/google/uuid"
)

// Hospital maps to the hospital table.
type Hospital struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	RegNumber string    `db:"reg_number" json:"reg_number"`
	GISLink   string    `db:"gis_link" json:"gis_link,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Member is a person attached to a hospital.
type Member struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// Members groups a hospital's attached doctors and patients.
type Members struct {
	Doctors  []Member `json:"doctors"`
	Patients []Member `json:"patients"`
}
