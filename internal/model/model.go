package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for event dates ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// ClockLayout is the wire format for event wall-clock times (24h "HH:MM").
const ClockLayout = "15:04"

// Calendar is a named, colored, independently toggle-visible container of
// events. IDs are opaque strings, unique for the lifetime of a store.
type Calendar struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   Color  `json:"color"`
	Visible bool   `json:"visible"`
}

// Event is a single non-recurring timed occurrence belonging to exactly one
// calendar.
//
// Date is optional; when set it is authoritative and Day is derived from it
// (1 = Sunday .. 7 = Saturday). When Date is empty the caller-supplied Day is
// ground truth. Color is a denormalized copy of the owning calendar's color,
// refreshed whenever that calendar's color changes.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Color       Color    `json:"color"`
	Day         int      `json:"day"`
	Date        string   `json:"date,omitempty"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Attendees   []string `json:"attendees"`
	Organizer   string   `json:"organizer"`
	CalendarID  string   `json:"calendarId"`
}

// ParseDate parses a wire-format date into a midnight time.Time in loc.
// A nil loc means time.Local.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q (want YYYY-MM-DD)", ErrValidation, s)
	}
	return t, nil
}

// DayFromDate derives the 1-based weekday number (1 = Sunday) for a
// wire-format date string.
func DayFromDate(s string) (int, error) {
	t, err := ParseDate(s, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()) + 1, nil
}

// ParseClock parses "HH:MM" into fractional hours (e.g. "09:30" -> 9.5).
func ParseClock(s string) (float64, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad time %q (want HH:MM)", ErrValidation, s)
	}
	return float64(t.Hour()) + float64(t.Minute())/60, nil
}

// ValidateEventTimes checks both clock fields and rejects ranges that end
// before they start. A negative span must never reach layout.
func ValidateEventTimes(start, end string) error {
	s, err := ParseClock(start)
	if err != nil {
		return err
	}
	e, err := ParseClock(end)
	if err != nil {
		return err
	}
	if e < s {
		return fmt.Errorf("%w: end time %s before start time %s", ErrValidation, end, start)
	}
	return nil
}

// Direction is a navigation command for the reference date.
type Direction string

const (
	DirPrev  Direction = "prev"
	DirNext  Direction = "next"
	DirToday Direction = "today"
)

// ParseDirection validates a wire direction string.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirPrev, DirNext, DirToday:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown navigation direction %q", ErrValidation, s)
	}
}
