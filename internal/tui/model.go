// Package tui is a terminal front end over any model.Service: it renders the
// computed week/month grids and drives navigation, visibility toggles and
// search. It works identically against the in-process store and a remote
// server.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"calgrid/internal/grid"
	"calgrid/internal/model"
)

// Model is the bubbletea model for the calendar view.
type Model struct {
	svc  model.Service
	calc *grid.Calculator

	// Vertical geometry of the week-view day columns, from config. One
	// terminal row covers half an hour, i.e. pixelsPerHour/2 pixels.
	pixelsPerHour float64
	gridStartHour float64

	ref       time.Time
	view      string // "week" or "month"
	calendars []model.Calendar
	events    []model.Event

	selectedCal int
	searching   bool
	searchInput textinput.Model
	results     []model.Event

	width   int
	height  int
	loadErr error

	quitting bool
}

type dataMsg struct {
	calendars []model.Calendar
	events    []model.Event
}

type dateMsg time.Time

type searchResultsMsg []model.Event

type errMsg struct{ err error }

// New creates the TUI model. view is the initial view mode ("week" or
// "month"); pixelsPerHour and gridStartHour come from config and drive the
// week-view layout.
func New(svc model.Service, calc *grid.Calculator, view string, pixelsPerHour, gridStartHour float64) Model {
	if view != "month" {
		view = "week"
	}
	if pixelsPerHour <= 0 {
		pixelsPerHour = 80
	}
	if gridStartHour < 0 || gridStartHour >= 24 {
		gridStartHour = 8
	}
	ti := textinput.New()
	ti.Placeholder = "search events"
	ti.CharLimit = 80
	ti.Width = 40

	return Model{
		svc:           svc,
		calc:          calc,
		pixelsPerHour: pixelsPerHour,
		gridStartHour: gridStartHour,
		view:          view,
		searchInput:   ti,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadDate(m.svc), loadData(m.svc))
}

// loadDate asks the service for the current reference date.
func loadDate(svc model.Service) tea.Cmd {
	return func() tea.Msg {
		d, err := svc.CurrentDate(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return dateMsg(d)
	}
}

// loadData fetches calendars plus the events of the visible ones.
func loadData(svc model.Service) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		cals, err := svc.ListCalendars(ctx)
		if err != nil {
			return errMsg{err}
		}
		visible := make([]string, 0, len(cals))
		for _, cal := range cals {
			if cal.Visible {
				visible = append(visible, cal.ID)
			}
		}
		events, err := svc.ListEvents(ctx, visible)
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{calendars: cals, events: events}
	}
}

func navigate(svc model.Service, dir model.Direction) tea.Cmd {
	return func() tea.Msg {
		d, err := svc.Navigate(context.Background(), dir)
		if err != nil {
			return errMsg{err}
		}
		return dateMsg(d)
	}
}

func toggleVisibility(svc model.Service, cal model.Calendar) tea.Cmd {
	return func() tea.Msg {
		_, err := svc.SetCalendarVisibility(context.Background(), cal.ID, !cal.Visible)
		if err != nil {
			return errMsg{err}
		}
		return loadData(svc)()
	}
}

func search(svc model.Service, query string) tea.Cmd {
	return func() tea.Msg {
		events, err := svc.SearchEvents(context.Background(), query, false)
		if err != nil {
			return errMsg{err}
		}
		return searchResultsMsg(events)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case dateMsg:
		m.ref = time.Time(msg)
		return m, nil
	case dataMsg:
		m.calendars = msg.calendars
		m.events = msg.events
		if m.selectedCal >= len(m.calendars) {
			m.selectedCal = 0
		}
		m.loadErr = nil
		return m, nil
	case searchResultsMsg:
		m.results = msg
		return m, nil
	case errMsg:
		m.loadErr = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.results = nil
			m.searchInput.Blur()
			return m, nil
		case "enter":
			return m, search(m.svc, m.searchInput.Value())
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		return m, navigate(m.svc, model.DirPrev)
	case "right", "l":
		return m, navigate(m.svc, model.DirNext)
	case "t":
		return m, navigate(m.svc, model.DirToday)
	case "m":
		if m.view == "week" {
			m.view = "month"
		} else {
			m.view = "week"
		}
		return m, nil
	case "up", "k":
		if m.selectedCal > 0 {
			m.selectedCal--
		}
		return m, nil
	case "down", "j":
		if m.selectedCal < len(m.calendars)-1 {
			m.selectedCal++
		}
		return m, nil
	case "v":
		if m.selectedCal < len(m.calendars) {
			return m, toggleVisibility(m.svc, m.calendars[m.selectedCal])
		}
		return m, nil
	case "r":
		return m, loadData(m.svc)
	case "/":
		m.searching = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}
