// Package grid derives the day/week/month cell structure for a reference
// date. All functions are pure given the injected clock; "today" flags track
// the real wall clock even when the reference date is pinned for tests or
// demos.
package grid

import "time"

// WeekCell is one day-sized slot of a week view.
type WeekCell struct {
	Date    time.Time
	Weekday int // 0 = Sunday .. 6 = Saturday
	Today   bool
}

// MonthCell is one of the 42 slots of a month view. Day 0 marks a padding
// cell before the 1st or after the last day of the month.
type MonthCell struct {
	Day   int
	Today bool
}

// Calculator computes grids in a fixed display location.
type Calculator struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Calculator. A nil loc means time.Local, a nil now means
// time.Now.
func New(loc *time.Location, now func() time.Time) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{loc: loc, now: now}
}

// WeekGrid returns the 7 consecutive dates of the week containing ref,
// anchored so index 0 is the most recent Sunday on or before ref.
func (c *Calculator) WeekGrid(ref time.Time) [7]WeekCell {
	ref = c.dateOnly(ref)
	sunday := ref.AddDate(0, 0, -int(ref.Weekday()))

	var cells [7]WeekCell
	for i := range cells {
		d := sunday.AddDate(0, 0, i)
		cells[i] = WeekCell{Date: d, Weekday: i, Today: c.IsToday(d)}
	}
	return cells
}

// MonthGrid returns exactly 42 cells for the month containing ref: leading
// padding equal to the weekday index of day 1, then the day numbers, then
// trailing padding.
func (c *Calculator) MonthGrid(ref time.Time) [42]MonthCell {
	ref = c.dateOnly(ref)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, c.loc)
	offset := int(first.Weekday())
	days := daysIn(ref.Year(), ref.Month())

	var cells [42]MonthCell
	for d := 1; d <= days; d++ {
		cells[offset+d-1] = MonthCell{
			Day:   d,
			Today: c.IsToday(first.AddDate(0, 0, d-1)),
		}
	}
	return cells
}

// IsToday compares t against the actual current date, by calendar day.
func (c *Calculator) IsToday(t time.Time) bool {
	now := c.now().In(c.loc)
	t = t.In(c.loc)
	return t.Year() == now.Year() && t.Month() == now.Month() && t.Day() == now.Day()
}

// MonthLabel formats the month heading, e.g. "March 2025".
func (c *Calculator) MonthLabel(ref time.Time) string {
	return ref.In(c.loc).Format("January 2006")
}

// DayLabel formats a single cell heading, e.g. "Mon 3/10".
func (c *Calculator) DayLabel(t time.Time) string {
	return t.In(c.loc).Format("Mon 1/2")
}

// WeekdayHeaders returns the fixed Sunday-first column headers.
func WeekdayHeaders() [7]string {
	return [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}
}

func (c *Calculator) dateOnly(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// daysIn returns the day count of a month. Day 0 of the next month is the
// last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
