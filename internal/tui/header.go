package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibdispatch/internal/format"
)

// HeaderModel renders the top bar: title, version and session uptime.
type HeaderModel struct {
	startTime time.Time
	version   string
	width     int
}

// NewHeaderModel creates a header whose timer starts now.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{startTime: time.Now(), version: version}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	title := "fibdispatch"
	if h.version != "" && h.version != "dev" {
		title += " " + h.version
	}
	left := titleStyle.Render(title) +
		dimStyle.Render(" | ") +
		accentStyle.Render(fmt.Sprintf("Uptime: %s", format.FormatExecutionDuration(time.Since(h.startTime).Truncate(time.Second))))
	gap := max(h.width-2-lipgloss.Width(left), 0)
	return headerStyle.Width(max(h.width, 0)).Render(left + strings.Repeat(" ", gap))
}
