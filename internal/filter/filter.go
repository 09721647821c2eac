// Package filter computes the visible event set from calendar visibility
// flags and free-text search queries.
package filter

import (
	"strings"

	"calgrid/internal/model"
)

// VisibleEvents keeps an event iff the calendar it belongs to exists and is
// visible. An event whose calendar is missing does not appear.
func VisibleEvents(events []model.Event, calendars []model.Calendar) []model.Event {
	visible := make(map[string]bool, len(calendars))
	for _, cal := range calendars {
		visible[cal.ID] = cal.Visible
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if visible[ev.CalendarID] {
			out = append(out, ev)
		}
	}
	return out
}

// Search matches events against a case-insensitive substring query over
// title, description, location and attendees.
//
// An empty or whitespace-only query returns an empty slice, not all events.
// With includeHidden false the owning calendar must also be visible.
func Search(events []model.Event, calendars []model.Calendar, query string, includeHidden bool) []model.Event {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []model.Event{}
	}

	visible := make(map[string]bool, len(calendars))
	for _, cal := range calendars {
		visible[cal.ID] = cal.Visible
	}

	out := make([]model.Event, 0)
	for _, ev := range events {
		if !includeHidden && !visible[ev.CalendarID] {
			continue
		}
		if matches(ev, q) {
			out = append(out, ev)
		}
	}
	return out
}

func matches(ev model.Event, q string) bool {
	if strings.Contains(strings.ToLower(ev.Title), q) ||
		strings.Contains(strings.ToLower(ev.Description), q) ||
		strings.Contains(strings.ToLower(ev.Location), q) {
		return true
	}
	for _, a := range ev.Attendees {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}
