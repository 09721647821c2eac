package layout

import (
	"errors"
	"testing"
	"time"

	"calgrid/internal/model"
)

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		pph, gsh   float64
		want       Box
	}{
		{"morning meeting", "09:00", "10:30", 80, 8, Box{Top: 80, Height: 120}},
		{"at grid start", "08:00", "09:00", 80, 8, Box{Top: 0, Height: 80}},
		{"half hours", "12:30", "13:15", 60, 8, Box{Top: 270, Height: 45}},
		{"zero duration", "10:00", "10:00", 80, 8, Box{Top: 160, Height: 0}},
		{"before grid start", "07:00", "08:00", 80, 8, Box{Top: -80, Height: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Place(tt.start, tt.end, tt.pph, tt.gsh)
			if err != nil {
				t.Fatalf("Place(%s, %s) unexpected error: %v", tt.start, tt.end, err)
			}
			if got != tt.want {
				t.Errorf("Place(%s, %s) = %+v, want %+v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestPlaceRejectsBadInput(t *testing.T) {
	if _, err := Place("10:30", "09:00", 80, 8); !errors.Is(err, model.ErrValidation) {
		t.Errorf("end before start: error = %v, want ErrValidation", err)
	}
	if _, err := Place("late", "09:00", 80, 8); !errors.Is(err, model.ErrValidation) {
		t.Errorf("malformed start: error = %v, want ErrValidation", err)
	}
	if _, err := Place("09:00", "25:00", 80, 8); !errors.Is(err, model.ErrValidation) {
		t.Errorf("malformed end: error = %v, want ErrValidation", err)
	}
}

func TestEventsForCellDualRule(t *testing.T) {
	dated := model.Event{ID: "dated", Date: "2025-03-10", Day: 2}
	floating := model.Event{ID: "floating", Day: 3} // Tuesday slot, no date
	events := []model.Event{dated, floating}

	// A dated event matches only its own date, regardless of the cell's
	// weekday index.
	got := EventsForCell(events, date("2025-03-10"), 1)
	if len(got) != 1 || got[0].ID != "dated" {
		t.Fatalf("cell 2025-03-10: got %v, want [dated]", ids(got))
	}

	// Same weekday one week later: the dated event must not match by Day.
	got = EventsForCell(events, date("2025-03-17"), 1)
	if len(got) != 0 {
		t.Errorf("cell 2025-03-17: got %v, want none", ids(got))
	}

	// The floating event appears at weekday index 2 and nowhere else.
	for idx := 0; idx < 7; idx++ {
		cellDate := date("2025-03-09").AddDate(0, 0, idx)
		got := EventsForCell([]model.Event{floating}, cellDate, idx)
		if idx == 2 {
			if len(got) != 1 {
				t.Errorf("weekday %d: floating event missing", idx)
			}
		} else if len(got) != 0 {
			t.Errorf("weekday %d: floating event unexpectedly present", idx)
		}
	}
}

func TestEventsForCellIgnoresTimeOfDay(t *testing.T) {
	ev := model.Event{ID: "e", Date: "2025-03-10"}
	cell := time.Date(2025, 3, 10, 17, 45, 0, 0, time.UTC)
	if got := EventsForCell([]model.Event{ev}, cell, 1); len(got) != 1 {
		t.Errorf("date match must ignore the cell's time of day")
	}
}

func ids(evs []model.Event) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.ID
	}
	return out
}
