package tui

import (
	"github.com/charmbracelet/lipgloss"

	"calgrid/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	todayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cellBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// paletteANSI resolves palette tokens to terminal colors. This is the only
// place in the program where a color token becomes a concrete style.
var paletteANSI = map[model.Color]lipgloss.Color{
	model.ColorBlue:   lipgloss.Color("12"),
	model.ColorGreen:  lipgloss.Color("10"),
	model.ColorRed:    lipgloss.Color("9"),
	model.ColorYellow: lipgloss.Color("11"),
	model.ColorPurple: lipgloss.Color("13"),
	model.ColorPink:   lipgloss.Color("205"),
	model.ColorOrange: lipgloss.Color("208"),
	model.ColorTeal:   lipgloss.Color("14"),
}

func colorStyle(c model.Color) lipgloss.Style {
	ansi, ok := paletteANSI[c]
	if !ok {
		ansi = lipgloss.Color("252")
	}
	return lipgloss.NewStyle().Foreground(ansi)
}
