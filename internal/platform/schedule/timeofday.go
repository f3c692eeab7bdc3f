// Package schedule turns a patient's daily medication-time preferences
// into concrete, timezone-qualified dose instants. All civil-time
// arithmetic in the system lives here; callers never construct schedule
// timestamps themselves.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
)

// TimeOfDay is a wall-clock time with no date component. It is a value
// type distinct from time.Time: a preference like "08:00" has no
// meaningful date or zone until it is anchored to a civil day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalJSON renders the value as "HH:mm".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts the same forms as ParseTimeOfDay.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Valid reports whether the value is a representable wall-clock time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// timeOfDayLayouts are tried in order. Go's reference-time layouts accept
// both zero-padded and bare hours, so "8:05" and "08:05" both match "15:04".
var timeOfDayLayouts = []string{
	"15:04",
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
}

// ParseTimeOfDay normalizes a textual time-of-day preference. Both
// 24-hour ("HH:mm") and common 12-hour forms ("h:mm AM/PM", "hAM") are
// accepted. Anything else is a MalformedTime error.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if norm == "" {
		return TimeOfDay{}, apperr.E(apperr.MalformedTime, "empty time of day")
	}
	for _, layout := range timeOfDayLayouts {
		parsed, err := time.Parse(layout, norm)
		if err != nil {
			continue
		}
		return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
	}
	return TimeOfDay{}, apperr.E(apperr.MalformedTime, "cannot parse %q as a time of day", s)
}

// At anchors the wall-clock time to a civil date in the given zone.
// time.Date normalizes nonexistent civil times (DST gaps) forward,
// which is the rounding the schedule wants.
func (t TimeOfDay) At(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, t.Hour, t.Minute, 0, 0, loc)
}
