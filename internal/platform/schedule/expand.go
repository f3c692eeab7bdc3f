package schedule

import (
	"time"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
)

// Slot is one of the three fixed daily dose categories.
type Slot string

const (
	Morning   Slot = "morning"
	Afternoon Slot = "afternoon"
	Evening   Slot = "evening"
)

// allSlots is the fixed slot order; dose selection always takes a prefix.
var allSlots = [3]Slot{Morning, Afternoon, Evening}

// ValidSlot reports whether s is a known slot name.
func ValidSlot(s Slot) bool {
	return s == Morning || s == Afternoon || s == Evening
}

// Default preference times applied when a patient has not set a slot.
var (
	DefaultMorning   = TimeOfDay{Hour: 8}
	DefaultAfternoon = TimeOfDay{Hour: 13}
	DefaultEvening   = TimeOfDay{Hour: 19}
)

// Preferences holds a patient's three optional slot times. A nil slot
// falls back to the default for that slot.
type Preferences struct {
	Morning   *TimeOfDay
	Afternoon *TimeOfDay
	Evening   *TimeOfDay
}

// TimeFor resolves the wall-clock time for a slot, applying defaults.
func (p Preferences) TimeFor(slot Slot) TimeOfDay {
	switch slot {
	case Morning:
		if p.Morning != nil {
			return *p.Morning
		}
		return DefaultMorning
	case Afternoon:
		if p.Afternoon != nil {
			return *p.Afternoon
		}
		return DefaultAfternoon
	default:
		if p.Evening != nil {
			return *p.Evening
		}
		return DefaultEvening
	}
}

// SlotsFor returns the slots used for the given dose frequency: always
// the first N of morning, afternoon, evening in that order.
func SlotsFor(dosesPerDay int) ([]Slot, error) {
	if dosesPerDay < 1 || dosesPerDay > len(allSlots) {
		return nil, apperr.E(apperr.Validation, "doses per day must be between 1 and 3, got %d", dosesPerDay)
	}
	return allSlots[:dosesPerDay], nil
}

// Dose is one computed intake instant.
type Dose struct {
	At   time.Time
	Slot Slot
}

// Expand materializes a regimen of `days` days starting at the civil
// date of `start` in the clinic zone: one Dose per selected slot per
// day, ordered by day then slot. The zone must be the clinic's named
// timezone; server-local time never enters the computation.
func Expand(start time.Time, days, dosesPerDay int, prefs Preferences, loc *time.Location) ([]Dose, error) {
	if loc == nil {
		return nil, apperr.E(apperr.InvalidSchedule, "clinic timezone is not set")
	}
	if days < 1 {
		return nil, apperr.E(apperr.InvalidSchedule, "regimen must span at least one day, got %d", days)
	}
	slots, err := SlotsFor(dosesPerDay)
	if err != nil {
		return nil, err
	}

	for _, slot := range slots {
		if tod := prefs.TimeFor(slot); !tod.Valid() {
			return nil, apperr.E(apperr.InvalidSchedule, "preference for %s slot is out of range: %s", slot, tod)
		}
	}

	year, month, day := start.In(loc).Date()
	doses := make([]Dose, 0, days*len(slots))
	for i := 0; i < days; i++ {
		for _, slot := range slots {
			tod := prefs.TimeFor(slot)
			at := tod.At(year, month, day+i, loc)
			doses = append(doses, Dose{At: at, Slot: slot})
		}
	}
	return doses, nil
}
