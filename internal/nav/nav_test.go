package nav

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

func TestNavigateWeekStep(t *testing.T) {
	m := New(date("2025-03-05"), func() time.Time { return date("2025-07-01") })

	got, err := m.Navigate(model.DirNext)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if want := date("2025-03-12"); !got.Equal(want) {
		t.Errorf("next from 2025-03-05 = %s, want %s", got, want)
	}

	got, err = m.Navigate(model.DirPrev)
	if err != nil {
		t.Fatalf("prev: %v", err)
	}
	if want := date("2025-03-05"); !got.Equal(want) {
		t.Errorf("prev undone = %s, want %s", got, want)
	}

	// Two more prevs cross the month boundary.
	m.Navigate(model.DirPrev)
	got, _ = m.Navigate(model.DirPrev)
	if want := date("2025-02-19"); !got.Equal(want) {
		t.Errorf("prev x2 = %s, want %s", got, want)
	}
}

func TestNavigateTodayUsesRealClock(t *testing.T) {
	// Seeded far from "now": today must land on the clock's date, not the
	// seed.
	now := time.Date(2025, 7, 1, 15, 30, 0, 0, time.UTC)
	m := New(date("2025-03-05"), func() time.Time { return now })

	got, err := m.Navigate(model.DirToday)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if want := date("2025-07-01"); !got.Equal(want) {
		t.Errorf("today = %s, want %s", got, want)
	}
	if !m.Current().Equal(got) {
		t.Errorf("Current() = %s, want %s", m.Current(), got)
	}
}

func TestNavigateNormalizesCase(t *testing.T) {
	// Mixed case must behave exactly like the canonical form, matching the
	// HTTP layer's parsing. It must never succeed without moving.
	m := New(date("2025-03-05"), func() time.Time { return date("2025-07-01") })

	tests := []struct {
		dir  string
		want string
	}{
		{"NEXT", "2025-03-12"},
		{"Prev", "2025-03-05"},
		{" today ", "2025-07-01"},
	}
	for _, tt := range tests {
		got, err := m.Navigate(model.Direction(tt.dir))
		if err != nil {
			t.Fatalf("Navigate(%q): %v", tt.dir, err)
		}
		if want := date(tt.want); !got.Equal(want) {
			t.Errorf("Navigate(%q) = %s, want %s", tt.dir, got, want)
		}
	}
}

func TestNavigateUnknownDirection(t *testing.T) {
	m := New(date("2025-03-05"), nil)
	before := m.Current()

	got, err := m.Navigate(model.Direction("sideways"))
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("unknown direction: error = %v, want ErrValidation", err)
	}
	if !got.Equal(before) || !m.Current().Equal(before) {
		t.Errorf("failed navigation moved the reference date")
	}
}

func TestZeroSeedStartsAtToday(t *testing.T) {
	now := time.Date(2025, 7, 1, 23, 59, 0, 0, time.UTC)
	m := New(time.Time{}, func() time.Time { return now })
	if want := date("2025-07-01"); !m.Current().Equal(want) {
		t.Errorf("Current() = %s, want %s", m.Current(), want)
	}
}
