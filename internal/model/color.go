package model

import "fmt"

// Color is a palette token for calendars and their events. The palette is a
// closed set of eight named colors; anything else is rejected at the
// boundary. Tokens are presentation-neutral here; the web DTOs and the TUI
// resolve them to concrete styles.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
	ColorTeal   Color = "teal"
)

// Palette lists every valid color token in display order.
var Palette = []Color{
	ColorBlue, ColorGreen, ColorRed, ColorYellow,
	ColorPurple, ColorPink, ColorOrange, ColorTeal,
}

// Valid reports whether c is a palette token.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// ParseColor validates a wire color string against the palette.
func ParseColor(s string) (Color, error) {
	c := Color(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown color %q", ErrValidation, s)
	}
	return c, nil
}
