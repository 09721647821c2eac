package ics

import (
	"strings"
	"testing"
	"time"

	"calgrid/internal/model"
)

func payload(lines ...string) []byte {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR")
	return []byte(strings.Join(all, "\r\n") + "\r\n")
}

func TestParseEvents(t *testing.T) {
	body := payload(
		"BEGIN:VEVENT",
		"UID:meeting-1",
		"DTSTAMP:20250301T000000Z",
		"DTSTART:20250310T140000Z",
		"DTEND:20250310T153000Z",
		"SUMMARY:Capstone Presentation",
		"LOCATION:Room 4723",
		"DESCRIPTION:Final demo",
		"ORGANIZER:mailto:ana@example.com",
		"ATTENDEE:mailto:bo@example.com",
		"END:VEVENT",
	)

	events, err := ParseEvents(body, "cal-1", time.UTC)
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.Title != "Capstone Presentation" {
		t.Errorf("Title = %q", ev.Title)
	}
	if ev.Date != "2025-03-10" || ev.StartTime != "14:00" || ev.EndTime != "15:30" {
		t.Errorf("time fields = %s %s-%s, want 2025-03-10 14:00-15:30", ev.Date, ev.StartTime, ev.EndTime)
	}
	if ev.CalendarID != "cal-1" {
		t.Errorf("CalendarID = %q", ev.CalendarID)
	}
	if ev.Location != "Room 4723" || ev.Description != "Final demo" {
		t.Errorf("Location/Description = %q / %q", ev.Location, ev.Description)
	}
	if ev.Organizer != "ana@example.com" {
		t.Errorf("Organizer = %q, mailto prefix not stripped", ev.Organizer)
	}
	if len(ev.Attendees) != 1 || ev.Attendees[0] != "bo@example.com" {
		t.Errorf("Attendees = %v", ev.Attendees)
	}
}

func TestParseEventsSkipsRecurring(t *testing.T) {
	body := payload(
		"BEGIN:VEVENT",
		"UID:weekly-1",
		"DTSTAMP:20250301T000000Z",
		"DTSTART:20250310T090000Z",
		"DTEND:20250310T100000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"SUMMARY:Weekly Sync",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:single-1",
		"DTSTAMP:20250301T000000Z",
		"DTSTART:20250311T090000Z",
		"DTEND:20250311T100000Z",
		"SUMMARY:One-off",
		"END:VEVENT",
	)

	events, err := ParseEvents(body, "cal-1", time.UTC)
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(events) != 1 || events[0].Title != "One-off" {
		t.Errorf("events = %v, want only the non-recurring one", events)
	}
}

func TestParseEventsClampsCrossMidnight(t *testing.T) {
	body := payload(
		"BEGIN:VEVENT",
		"UID:late-1",
		"DTSTAMP:20250301T000000Z",
		"DTSTART:20250310T230000Z",
		"DTEND:20250311T010000Z",
		"SUMMARY:Late Show",
		"END:VEVENT",
	)

	events, err := ParseEvents(body, "cal-1", time.UTC)
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want 1", len(events))
	}
	if events[0].StartTime != "23:00" || events[0].EndTime != "23:59" {
		t.Errorf("cross-midnight event = %s-%s, want 23:00-23:59", events[0].StartTime, events[0].EndTime)
	}
}

func TestParseEventsUntitledFallback(t *testing.T) {
	body := payload(
		"BEGIN:VEVENT",
		"UID:untitled-1",
		"DTSTAMP:20250301T000000Z",
		"DTSTART:20250310T090000Z",
		"DTEND:20250310T100000Z",
		"END:VEVENT",
	)
	events, err := ParseEvents(body, "cal-1", time.UTC)
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(events) != 1 || events[0].Title != untitledFallback {
		t.Errorf("untitled event Title = %q, want %q", events[0].Title, untitledFallback)
	}
}

func TestExport(t *testing.T) {
	events := []model.Event{
		{
			ID:         "e1",
			Title:      "Capstone Presentation",
			Date:       "2025-03-10",
			StartTime:  "09:00",
			EndTime:    "10:30",
			Location:   "Room 4723",
			Organizer:  "ana@example.com",
			Attendees:  []string{"bo@example.com"},
			CalendarID: "cal-1",
		},
		{
			// No date: only a weekday slot exists, so this one is skipped.
			ID: "e2", Title: "Gym", Day: 3, StartTime: "18:00", EndTime: "19:00", CalendarID: "cal-1",
		},
	}

	out, err := Export(events, time.UTC)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, want := range []string{"BEGIN:VCALENDAR", "UID:e1", "SUMMARY:Capstone Presentation", "LOCATION:Room 4723"} {
		if !strings.Contains(out, want) {
			t.Errorf("export output missing %q", want)
		}
	}
	if strings.Contains(out, "Gym") {
		t.Errorf("date-less event leaked into export")
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cal.example.com/private/feed.ics?token=abcd", "https://cal.example.com/...(redacted)"},
		{"https://cal.example.com", "https://cal.example.com/...(redacted)"},
		{"not-a-url", "ics://...(redacted)"},
	}
	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
