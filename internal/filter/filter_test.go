package filter

import (
	"testing"

	"calgrid/internal/model"
)

var calendars = []model.Calendar{
	{ID: "work", Name: "Work", Color: model.ColorBlue, Visible: true},
	{ID: "home", Name: "Home", Color: model.ColorGreen, Visible: false},
}

var events = []model.Event{
	{ID: "standup", Title: "Daily Standup", CalendarID: "work", Attendees: []string{"Ana", "Bo"}},
	{ID: "dentist", Title: "Dentist", Location: "Midtown Clinic", CalendarID: "home"},
	{ID: "review", Title: "Design Review", Description: "quarterly design sync", CalendarID: "work"},
	{ID: "orphan", Title: "Ghost", CalendarID: "deleted-cal"},
}

func TestVisibleEvents(t *testing.T) {
	got := VisibleEvents(events, calendars)
	if len(got) != 2 {
		t.Fatalf("VisibleEvents returned %d events, want 2", len(got))
	}
	for _, ev := range got {
		if ev.CalendarID != "work" {
			t.Errorf("event %s from non-visible calendar %s included", ev.ID, ev.CalendarID)
		}
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	for _, q := range []string{"", "   ", "\t"} {
		if got := Search(events, calendars, q, true); len(got) != 0 {
			t.Errorf("Search(%q) returned %d events, want 0", q, len(got))
		}
	}
}

func TestSearchFields(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		includeHidden bool
		wantIDs       []string
	}{
		{"title match", "standup", false, []string{"standup"}},
		{"case insensitive", "DESIGN", false, []string{"review"}},
		{"description match", "quarterly", false, []string{"review"}},
		{"attendee match", "ana", false, []string{"standup"}},
		{"location hidden calendar", "clinic", false, nil},
		{"location include hidden", "clinic", true, []string{"dentist"}},
		{"no match", "zzz", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(events, calendars, tt.query, tt.includeHidden)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Search(%q, %v) returned %d events, want %d",
					tt.query, tt.includeHidden, len(got), len(tt.wantIDs))
			}
			for i, ev := range got {
				if ev.ID != tt.wantIDs[i] {
					t.Errorf("result %d = %s, want %s", i, ev.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestSearchHiddenIncludesOrphans(t *testing.T) {
	// With includeHidden, even an event whose calendar no longer exists is
	// searchable; without it, it is not.
	if got := Search(events, calendars, "ghost", true); len(got) != 1 {
		t.Errorf("includeHidden search for orphan: got %d, want 1", len(got))
	}
	if got := Search(events, calendars, "ghost", false); len(got) != 0 {
		t.Errorf("visible-only search for orphan: got %d, want 0", len(got))
	}
}
