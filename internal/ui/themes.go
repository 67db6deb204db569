package ui

import (
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme maps output roles to ANSI escape sequences.
type Theme struct {
	Name      string
	Primary   string // backend names
	Secondary string // labels and hints
	Success   string
	Warning   string // wrap notices, tick counts
	Error     string
	Info      string // indexes and environment details
	Bold      string
	Underline string
	Reset     string
}

const (
	esc       = "\033["
	bold      = esc + "1m"
	underline = esc + "4m"
	reset     = esc + "0m"
)

func color256(n string) string { return esc + "38;5;" + n + "m" }

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   color256("75"),
		Secondary: color256("245"),
		Success:   color256("78"),
		Warning:   color256("221"),
		Error:     color256("203"),
		Info:      color256("117"),
		Bold:      bold,
		Underline: underline,
		Reset:     reset,
	}

	// LightTheme suits light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   color256("25"),
		Secondary: color256("241"),
		Success:   color256("28"),
		Warning:   color256("130"),
		Error:     color256("124"),
		Info:      color256("31"),
		Bold:      bold,
		Underline: underline,
		Reset:     reset,
	}

	// NoColorTheme emits no escape sequences at all.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	themeMu      sync.RWMutex
	currentTheme = DarkTheme
)

// ThemeNames lists the selectable theme names.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetCurrentTheme installs t as the active theme.
func SetCurrentTheme(t Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = t
}

// SetTheme activates the named theme and reports whether the name was known.
// Unknown names fall back to DarkTheme.
func SetTheme(name string) bool {
	t, ok := themes[name]
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
	return ok
}

// InitTheme picks the startup theme: no colours when noColor is set or the
// NO_COLOR environment variable exists (https://no-color.org/), dark
// otherwise.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}

// Colors reports whether the active theme emits escape sequences.
func Colors() bool {
	return CurrentTheme().Name != NoColorTheme.Name
}

// TUITheme is the lipgloss palette of the dashboard.
type TUITheme struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the default dashboard palette.
	DarkTUITheme = TUITheme{
		Text:    lipgloss.Color("#DADADA"),
		Border:  lipgloss.Color("#5FAFFF"),
		Accent:  lipgloss.Color("#87D7FF"),
		Success: lipgloss.Color("#5FD787"),
		Warning: lipgloss.Color("#FFD75F"),
		Error:   lipgloss.Color("#FF5F5F"),
		Dim:     lipgloss.Color("#6C6C6C"),
	}

	// NoColorTUITheme keeps the terminal's default colours.
	NoColorTUITheme = TUITheme{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
	}
)

// CurrentTUITheme returns the dashboard palette matching the active theme.
func CurrentTUITheme() TUITheme {
	if !Colors() {
		return NoColorTUITheme
	}
	return DarkTUITheme
}
