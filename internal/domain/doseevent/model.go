package doseevent

import (
	"time"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/platform/schedule"
)

// MaxMissed is the missed-count ceiling. Reaching it expires the event.
const MaxMissed = 3

// Action is a patient's response to a scheduled dose.
type Action string

const (
	ActionComplete Action = "complete"
	ActionDelay    Action = "delay"
)

// DoseEvent maps to the dose_event table: one concrete intake slot for
// one line item. An event is terminal once completed or expired.
type DoseEvent struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	LineItemID  uuid.UUID     `db:"line_item_id" json:"line_item_id"`
	PatientID   uuid.UUID     `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID     `db:"doctor_id" json:"doctor_id"`
	ScheduledAt time.Time     `db:"scheduled_at" json:"scheduled_at"`
	Slot        schedule.Slot `db:"slot" json:"slot"`
	MissedCount int           `db:"missed_count" json:"missed_count"`
	IsCompleted bool          `db:"is_completed" json:"is_completed"`
	IsExpired   bool          `db:"is_expired" json:"is_expired"`
}

// Terminal reports whether the event can no longer change.
func (e *DoseEvent) Terminal() bool {
	return e.IsCompleted || e.IsExpired
}

// View is a dose event annotated for API responses with the wall-clock
// time in the clinic zone.
type View struct {
	DoseEvent
	Time string `json:"time"`
}

// MonthGroup is one calendar month of a patient's events.
type MonthGroup struct {
	Month       string `json:"month"` // YYYY-MM in the clinic zone
	Completed   int    `json:"completed"`
	Expired     int    `json:"expired"`
	MissedTotal int    `json:"missed_total"`
	Events      []View `json:"events"`
}

// PatientScore is one roster entry of a doctor's adherence report.
type PatientScore struct {
	PatientID uuid.UUID `json:"patient_id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
}
