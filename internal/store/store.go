// Package store is the in-memory authoritative owner of calendars and
// events. It implements model.Service; the HTTP client in internal/client is
// its drop-in remote counterpart.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"calgrid/internal/filter"
	appLog "calgrid/internal/log"
	"calgrid/internal/model"
	"calgrid/internal/nav"
)

// Store holds all calendar and event records for one app instance. Instances
// are constructor-injected, never package globals, so tests can run several
// side by side.
//
// Core operations are logically single-threaded; the mutex only exists
// because HTTP handlers call in from multiple goroutines.
type Store struct {
	mu        sync.RWMutex
	calendars []model.Calendar
	events    []model.Event

	nav *nav.Machine
}

// New creates an empty Store navigating from the given machine.
func New(machine *nav.Machine) *Store {
	if machine == nil {
		machine = nav.New(time.Time{}, nil)
	}
	return &Store{
		calendars: make([]model.Calendar, 0),
		events:    make([]model.Event, 0),
		nav:       machine,
	}
}

var _ model.Service = (*Store)(nil)

// ListCalendars returns a copy of all calendars in creation order.
func (s *Store) ListCalendars(_ context.Context) ([]model.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Calendar(nil), s.calendars...), nil
}

// CreateCalendar adds a calendar. New calendars start visible.
func (s *Store) CreateCalendar(_ context.Context, name string, color model.Color) (model.Calendar, error) {
	if strings.TrimSpace(name) == "" {
		return model.Calendar{}, fmt.Errorf("%w: calendar name is empty", model.ErrValidation)
	}
	if !color.Valid() {
		return model.Calendar{}, fmt.Errorf("%w: unknown color %q", model.ErrValidation, color)
	}

	cal := model.Calendar{
		ID:      uuid.NewString(),
		Name:    name,
		Color:   color,
		Visible: true,
	}

	s.mu.Lock()
	s.calendars = append(s.calendars, cal)
	s.mu.Unlock()

	appLog.Debug("calendar created", "id", cal.ID, "name", cal.Name, "color", cal.Color)
	return cal, nil
}

// UpdateCalendar applies a partial update. A color change fans out to the
// denormalized color of every owned event within the same mutation; a failed
// validation leaves the store untouched.
func (s *Store) UpdateCalendar(_ context.Context, id string, patch model.CalendarPatch) (model.Calendar, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.Calendar{}, fmt.Errorf("%w: calendar name is empty", model.ErrValidation)
	}
	if patch.Color != nil && !patch.Color.Valid() {
		return model.Calendar{}, fmt.Errorf("%w: unknown color %q", model.ErrValidation, *patch.Color)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calendarIndex(id)
	if i < 0 {
		return model.Calendar{}, fmt.Errorf("%w: calendar %s", model.ErrNotFound, id)
	}

	cal := s.calendars[i]
	if patch.Name != nil {
		cal.Name = *patch.Name
	}
	if patch.Visible != nil {
		cal.Visible = *patch.Visible
	}
	if patch.Color != nil && *patch.Color != cal.Color {
		cal.Color = *patch.Color
		for j := range s.events {
			if s.events[j].CalendarID == id {
				s.events[j].Color = cal.Color
			}
		}
	}
	s.calendars[i] = cal

	return cal, nil
}

// DeleteCalendar removes a calendar together with every event that
// references it, as one atomic operation. Deleting an already-deleted id is
// NotFound, never a silent no-op.
func (s *Store) DeleteCalendar(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calendarIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: calendar %s", model.ErrNotFound, id)
	}
	s.calendars = append(s.calendars[:i], s.calendars[i+1:]...)

	kept := s.events[:0]
	removed := 0
	for _, ev := range s.events {
		if ev.CalendarID == id {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept

	appLog.Debug("calendar deleted", "id", id, "cascaded_events", removed)
	return nil
}

// SetCalendarVisibility flips one calendar's visibility and returns the full
// updated list. An unknown id leaves the list unchanged (matching the
// original toggle behavior, which mapped over the collection).
func (s *Store) SetCalendarVisibility(_ context.Context, id string, visible bool) ([]model.Calendar, error) {
	s.mu.Lock()
	if i := s.calendarIndex(id); i >= 0 {
		s.calendars[i].Visible = visible
	}
	out := append([]model.Calendar(nil), s.calendars...)
	s.mu.Unlock()
	return out, nil
}

// ListEvents returns the events belonging to the given calendars, in
// creation order.
func (s *Store) ListEvents(_ context.Context, visibleCalendarIDs []string) ([]model.Event, error) {
	want := make(map[string]bool, len(visibleCalendarIDs))
	for _, id := range visibleCalendarIDs {
		want[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0)
	for _, ev := range s.events {
		if want[ev.CalendarID] {
			out = append(out, ev)
		}
	}
	return out, nil
}

// SearchEvents matches events against a free-text query. An empty query
// returns no events; see filter.Search.
func (s *Store) SearchEvents(_ context.Context, query string, includeHidden bool) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Search(s.events, s.calendars, query, includeHidden), nil
}

// CreateEvent validates and stores a new event. The event's color is copied
// from its calendar; Day is derived from Date when a date is present.
func (s *Store) CreateEvent(_ context.Context, ev model.Event) (model.Event, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return model.Event{}, fmt.Errorf("%w: event title is empty", model.ErrValidation)
	}
	if err := model.ValidateEventTimes(ev.StartTime, ev.EndTime); err != nil {
		return model.Event{}, err
	}
	if err := normalizeDay(&ev); err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ci := s.calendarIndex(ev.CalendarID)
	if ci < 0 {
		return model.Event{}, fmt.Errorf("%w: unknown calendar %q", model.ErrValidation, ev.CalendarID)
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.Color = s.calendars[ci].Color
	if ev.Attendees == nil {
		ev.Attendees = []string{}
	}

	s.events = append(s.events, ev)
	appLog.Debug("event created", "id", ev.ID, "calendar", ev.CalendarID, "date", ev.Date, "day", ev.Day)
	return ev, nil
}

// UpdateEvent applies a partial update. Changing Date recomputes Day; moving
// the event to another calendar re-copies that calendar's color. The stored
// record only changes if the whole patched event validates.
func (s *Store) UpdateEvent(_ context.Context, id string, patch model.EventPatch) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndex(id)
	if i < 0 {
		return model.Event{}, fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}

	ev := s.events[i]
	if patch.Title != nil {
		ev.Title = *patch.Title
	}
	if patch.StartTime != nil {
		ev.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		ev.EndTime = *patch.EndTime
	}
	if patch.Date != nil {
		ev.Date = *patch.Date
	}
	if patch.Day != nil {
		ev.Day = *patch.Day
	}
	if patch.Location != nil {
		ev.Location = *patch.Location
	}
	if patch.Description != nil {
		ev.Description = *patch.Description
	}
	if patch.Attendees != nil {
		ev.Attendees = *patch.Attendees
	}
	if patch.Organizer != nil {
		ev.Organizer = *patch.Organizer
	}
	if patch.CalendarID != nil {
		ev.CalendarID = *patch.CalendarID
	}

	if strings.TrimSpace(ev.Title) == "" {
		return model.Event{}, fmt.Errorf("%w: event title is empty", model.ErrValidation)
	}
	if err := model.ValidateEventTimes(ev.StartTime, ev.EndTime); err != nil {
		return model.Event{}, err
	}
	if err := normalizeDay(&ev); err != nil {
		return model.Event{}, err
	}

	ci := s.calendarIndex(ev.CalendarID)
	if ci < 0 {
		return model.Event{}, fmt.Errorf("%w: unknown calendar %q", model.ErrValidation, ev.CalendarID)
	}
	ev.Color = s.calendars[ci].Color

	s.events[i] = ev
	return ev, nil
}

// DeleteEvent removes one event. Unknown ids are NotFound.
func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	return nil
}

// CurrentDate returns the navigation reference date.
func (s *Store) CurrentDate(_ context.Context) (time.Time, error) {
	return s.nav.Current(), nil
}

// Navigate advances, rewinds or resets the reference date.
func (s *Store) Navigate(_ context.Context, dir model.Direction) (time.Time, error) {
	return s.nav.Navigate(dir)
}

// normalizeDay enforces the date/day invariant: with a date, Day is derived
// from it; without one, the caller-supplied Day must be a valid weekday
// number.
func normalizeDay(ev *model.Event) error {
	if ev.Date != "" {
		day, err := model.DayFromDate(ev.Date)
		if err != nil {
			return err
		}
		ev.Day = day
		return nil
	}
	if ev.Day < 1 || ev.Day > 7 {
		return fmt.Errorf("%w: day %d out of range 1..7", model.ErrValidation, ev.Day)
	}
	return nil
}

// callers must hold s.mu
func (s *Store) calendarIndex(id string) int {
	for i, cal := range s.calendars {
		if cal.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) eventIndex(id string) int {
	for i, ev := range s.events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}
