package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

// Export serializes events into a single VCALENDAR payload. Events without a
// date only exist as floating weekday slots and have no concrete DTSTART, so
// they are skipped with a log line.
func Export(events []model.Event, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//calgrid//calendar export//EN")

	skipped := 0
	for _, ev := range events {
		if ev.Date == "" {
			skipped++
			continue
		}

		start, err := eventTime(ev.Date, ev.StartTime, loc)
		if err != nil {
			return "", fmt.Errorf("export event %s: %w", ev.ID, err)
		}
		end, err := eventTime(ev.Date, ev.EndTime, loc)
		if err != nil {
			return "", fmt.Errorf("export event %s: %w", ev.ID, err)
		}

		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(time.Now().UTC())
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Organizer != "" {
			ve.SetOrganizer(ev.Organizer)
		}
		for _, a := range ev.Attendees {
			ve.AddAttendee(a)
		}
	}

	if skipped > 0 {
		appLog.Info("ics export skipped date-less events", "count", skipped)
	}
	return cal.Serialize(), nil
}

// eventTime combines a wire date and wall-clock time into a time.Time in loc.
func eventTime(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout+" "+model.ClockLayout, date+" "+clock, loc)
}
