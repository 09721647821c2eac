package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

// untitledFallback fills the required title field for VEVENTs that carry no
// SUMMARY.
const untitledFallback = "(no title)"

// ParseEvents converts an ICS payload into store-ready events for the given
// calendar. Times are rendered as wall-clock values in loc; the calendar
// date goes into Event.Date so the layout engine matches by date.
//
// Recurring VEVENTs (RRULE) are skipped with a log line: recurrence
// expansion is out of scope for this app. VEVENTs without a UID or DTSTART
// are skipped as well.
func ParseEvents(body []byte, calendarID string, loc *time.Location) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	skippedRecurring := 0

	for _, ve := range cal.Events() {
		if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
			skippedRecurring++
			continue
		}

		ev, ok := parseVEvent(ve, calendarID, loc)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	if skippedRecurring > 0 {
		appLog.Info("ics import skipped recurring events", "count", skippedRecurring)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent, calendarID string, loc *time.Location) (model.Event, bool) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return model.Event{}, false
	}

	start, err := ve.GetStartAt()
	if err != nil || start.IsZero() {
		return model.Event{}, false
	}
	end, err := ve.GetEndAt()
	if err != nil || end.IsZero() {
		end = start.Add(time.Hour)
	}

	start = start.In(loc)
	end = end.In(loc)

	ev := model.Event{
		Title:      untitledFallback,
		Date:       start.Format(model.DateLayout),
		StartTime:  start.Format(model.ClockLayout),
		EndTime:    end.Format(model.ClockLayout),
		Attendees:  []string{},
		CalendarID: calendarID,
	}

	// Events that run past midnight (including all-day DTEND on the next
	// day) are clamped to the end of the start date: the store rejects
	// end-before-start wall-clock ranges.
	if end.Format(model.DateLayout) != ev.Date {
		ev.EndTime = "23:59"
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		ev.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyOrganizer); p != nil {
		ev.Organizer = stripMailto(p.Value)
	}
	for _, p := range ve.Attendees() {
		ev.Attendees = append(ev.Attendees, stripMailto(p.Email()))
	}

	return ev, true
}

func stripMailto(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "mailto:") {
		return s[len("mailto:"):]
	}
	return s
}
