package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"calgrid/internal/filter"
	"calgrid/internal/grid"
	"calgrid/internal/layout"
	"calgrid/internal/model"
)

const (
	colWidth = 18
	// weekHours is the span of a rendered day column, starting at the
	// configured grid start hour. Two rows per hour.
	weekHours = 12
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.ref.IsZero() {
		return dimStyle.Render("loading calendar...")
	}

	var b strings.Builder

	title := "calgrid - " + m.calc.MonthLabel(m.ref)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(errStyle.Render("error: "+m.loadErr.Error()) + "\n\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), "  ", m.gridView())
	b.WriteString(body)
	b.WriteString("\n")

	if m.searching {
		b.WriteString("\n" + m.searchView())
	}

	b.WriteString("\n" + helpStyle.Render(
		"h/l prev/next  t today  m week/month  j/k select  v toggle  / search  r reload  q quit"))
	return b.String()
}

// sidebarView lists the calendars with their color dots and visibility.
func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Calendars") + "\n")

	if len(m.calendars) == 0 {
		b.WriteString(dimStyle.Render("(none)") + "\n")
	}
	for i, cal := range m.calendars {
		mark := "[ ]"
		if cal.Visible {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", mark, colorStyle(cal.Color).Render("●"), cal.Name)
		if i == m.selectedCal {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return lipgloss.NewStyle().Width(24).Render(b.String())
}

func (m Model) gridView() string {
	if m.view == "month" {
		return m.monthView()
	}
	return m.weekView()
}

// weekView renders 7 day columns with each cell's events placed by the
// layout engine. Visibility filtering runs here so a stale event list never
// leaks hidden calendars into the grid.
func (m Model) weekView() string {
	cells := m.calc.WeekGrid(m.ref)
	visible := filter.VisibleEvents(m.events, m.calendars)
	headers := grid.WeekdayHeaders()

	cols := make([]string, 0, len(cells))
	for i, cell := range cells {
		var b strings.Builder

		head := fmt.Sprintf("%s %s", headers[i], cell.Date.Format("1/2"))
		if cell.Today {
			b.WriteString(todayStyle.Render(head))
		} else {
			b.WriteString(headerStyle.Render(head))
		}
		b.WriteString("\n")

		for _, row := range m.dayColumn(layout.EventsForCell(visible, cell.Date, cell.Weekday)) {
			b.WriteString(row + "\n")
		}

		cols = append(cols, cellBorderStyle.Width(colWidth).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// dayColumn maps one cell's events onto half-hour rows. An event's row comes
// from its layout box: Top pixels divided by the pixels one row covers.
// Rows already taken push an event down so overlapping entries stay legible.
func (m Model) dayColumn(evs []model.Event) []string {
	sortByStart(evs)

	rows := make([]string, weekHours*2)
	rowPixels := m.pixelsPerHour / 2

	for _, ev := range evs {
		box, err := layout.Place(ev.StartTime, ev.EndTime, m.pixelsPerHour, m.gridStartHour)
		if err != nil {
			continue
		}
		r := int(box.Top / rowPixels)
		if r < 0 {
			r = 0
		}
		if r >= len(rows) {
			r = len(rows) - 1
		}
		for r < len(rows)-1 && rows[r] != "" {
			r++
		}
		rows[r] = colorStyle(ev.Color).Render(trim(ev.StartTime+" "+ev.Title, colWidth))
	}
	return rows
}

// monthView renders the 6x7 cell matrix with per-day event counts.
func (m Model) monthView() string {
	cells := m.calc.MonthGrid(m.ref)
	visible := filter.VisibleEvents(m.events, m.calendars)

	counts := make(map[string]int)
	for _, ev := range visible {
		if ev.Date != "" {
			counts[ev.Date]++
		}
	}

	var b strings.Builder
	for _, h := range grid.WeekdayHeaders() {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s", h)))
	}
	b.WriteString("\n")

	for row := 0; row < 6; row++ {
		for col := 0; col < 7; col++ {
			cell := cells[row*7+col]
			if cell.Day == 0 {
				b.WriteString(strings.Repeat(" ", 8))
				continue
			}

			date := fmt.Sprintf("%04d-%02d-%02d", m.ref.Year(), int(m.ref.Month()), cell.Day)
			label := fmt.Sprintf("%2d", cell.Day)
			if n := counts[date]; n > 0 {
				label += fmt.Sprintf(" (%d)", n)
			}
			label = fmt.Sprintf("%-8s", label)

			if cell.Today {
				b.WriteString(todayStyle.Render(label))
			} else {
				b.WriteString(label)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.searchInput.View() + "\n")

	for _, ev := range m.results {
		when := ev.Date
		if when == "" {
			when = fmt.Sprintf("day %d", ev.Day)
		}
		b.WriteString(colorStyle(ev.Color).Render("●") +
			fmt.Sprintf(" %s %s-%s  %s", when, ev.StartTime, ev.EndTime, ev.Title))
		if ev.Location != "" {
			b.WriteString(dimStyle.Render(" @ " + ev.Location))
		}
		b.WriteString("\n")
	}
	if len(m.results) == 0 && m.searchInput.Value() != "" {
		b.WriteString(dimStyle.Render("no matches") + "\n")
	}
	return b.String()
}

// sortByStart orders events by start time, then title for stable display.
func sortByStart(evs []model.Event) {
	sort.Slice(evs, func(i, j int) bool {
		si, _ := model.ParseClock(evs[i].StartTime)
		sj, _ := model.ParseClock(evs[j].StartTime)
		if si != sj {
			return si < sj
		}
		return evs[i].Title < evs[j].Title
	})
}

// trim shortens s to at most w runes. Counting runes, not bytes, keeps
// multi-byte titles from being cut mid-sequence.
func trim(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
