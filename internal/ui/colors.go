package ui

// Role accessors read the active theme on every call so a theme switch
// applies immediately.

func ColorPrimary() string   { return CurrentTheme().Primary }
func ColorSecondary() string { return CurrentTheme().Secondary }
func ColorGreen() string     { return CurrentTheme().Success }
func ColorYellow() string    { return CurrentTheme().Warning }
func ColorRed() string       { return CurrentTheme().Error }
func ColorCyan() string      { return CurrentTheme().Info }
func ColorBold() string      { return CurrentTheme().Bold }
func ColorUnderline() string { return CurrentTheme().Underline }
func ColorReset() string     { return CurrentTheme().Reset }

// Paint wraps s in color and a reset, or returns s unchanged when color is
// empty.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + ColorReset()
}
