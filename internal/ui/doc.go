// Package ui holds the colour themes shared by the CLI and the TUI. ANSI
// escape sequences serve the line-oriented output; a lipgloss palette serves
// the interactive dashboard. NO_COLOR and -no-color select an empty theme.
package ui
