package model

import (
	"context"
	"time"
)

// CalendarPatch is a partial calendar update. Nil fields are left untouched.
type CalendarPatch struct {
	Name    *string `json:"name,omitempty"`
	Color   *Color  `json:"color,omitempty"`
	Visible *bool   `json:"visible,omitempty"`
}

// EventPatch is a partial event update. Nil fields are left untouched.
// Setting Date recomputes Day from it; an explicit Day is only honored for
// events without a date.
type EventPatch struct {
	Title       *string   `json:"title,omitempty"`
	StartTime   *string   `json:"startTime,omitempty"`
	EndTime     *string   `json:"endTime,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Day         *int      `json:"day,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
	Attendees   *[]string `json:"attendees,omitempty"`
	Organizer   *string   `json:"organizer,omitempty"`
	CalendarID  *string   `json:"calendarId,omitempty"`
}

// Service is the data-access boundary between the calendar core and its
// callers. The in-process store and the HTTP client implement it with
// identical observable behavior, so UI code never cares which one it holds.
type Service interface {
	ListCalendars(ctx context.Context) ([]Calendar, error)
	CreateCalendar(ctx context.Context, name string, color Color) (Calendar, error)
	UpdateCalendar(ctx context.Context, id string, patch CalendarPatch) (Calendar, error)
	DeleteCalendar(ctx context.Context, id string) error
	SetCalendarVisibility(ctx context.Context, id string, visible bool) ([]Calendar, error)

	ListEvents(ctx context.Context, visibleCalendarIDs []string) ([]Event, error)
	SearchEvents(ctx context.Context, query string, includeHidden bool) ([]Event, error)
	CreateEvent(ctx context.Context, ev Event) (Event, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error)
	DeleteEvent(ctx context.Context, id string) error

	CurrentDate(ctx context.Context) (time.Time, error)
	Navigate(ctx context.Context, dir Direction) (time.Time, error)
}
