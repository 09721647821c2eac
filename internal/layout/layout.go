// Package layout places events into grid cells and into vertical pixel
// space. It is pure: no clock, no store access.
package layout

import (
	"fmt"
	"time"

	"calgrid/internal/model"
)

// Box is the vertical pixel region an event occupies inside a day column.
type Box struct {
	Top    float64
	Height float64
}

// Place maps a wall-clock time range onto a Box.
//
//	Top    = (start - gridStartHour) * pixelsPerHour
//	Height = (end - start) * pixelsPerHour
//
// An end before the start is a validation error, never a negative height.
// Events are not truncated at cell boundaries, and concurrent events in the
// same cell are left overlapping rather than stacked side by side.
func Place(start, end string, pixelsPerHour, gridStartHour float64) (Box, error) {
	s, err := model.ParseClock(start)
	if err != nil {
		return Box{}, err
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return Box{}, err
	}
	if e < s {
		return Box{}, fmt.Errorf("%w: end time %s before start time %s", model.ErrValidation, end, start)
	}
	return Box{
		Top:    (s - gridStartHour) * pixelsPerHour,
		Height: (e - s) * pixelsPerHour,
	}, nil
}

// EventsForCell selects the events belonging to one grid cell.
//
// The dual rule: an event with a Date matches only by calendar-day equality
// with cellDate (time of day ignored); an event without one matches only by
// Day == weekdayIndex+1. No cross-matching in either direction.
func EventsForCell(events []model.Event, cellDate time.Time, weekdayIndex int) []model.Event {
	cellKey := cellDate.Format(model.DateLayout)

	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.Date != "" {
			if ev.Date == cellKey {
				out = append(out, ev)
			}
			continue
		}
		if ev.Day == weekdayIndex+1 {
			out = append(out, ev)
		}
	}
	return out
}
