package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/format"
	"github.com/agbru/fibdispatch/internal/orchestration"
)

// maxHistory bounds the number of kept rounds.
const maxHistory = 200

// HistoryEntry is one finished round.
type HistoryEntry struct {
	Index    uint64
	Results  []orchestration.CalculationResult
	Mismatch bool
	At       time.Time
}

// NewHistoryEntry builds an entry and flags disagreeing backends.
func NewHistoryEntry(index uint64, results []orchestration.CalculationResult, at time.Time) HistoryEntry {
	return HistoryEntry{
		Index:    index,
		Results:  results,
		Mismatch: orchestration.MismatchedResults(results),
		At:       at,
	}
}

// Value returns the first successful result.
func (e HistoryEntry) Value() (uint64, bool) {
	for _, r := range e.Results {
		if r.Err == nil {
			return r.Result, true
		}
	}
	return 0, false
}

// Lines renders the entry: a value line followed by one line per backend.
func (e HistoryEntry) Lines() []string {
	label := fmt.Sprintf("F(%d)", e.Index)
	if fibonacci.Wraps(e.Index) {
		label += " mod 2^64"
	}

	var head string
	switch v, ok := e.Value(); {
	case !ok:
		head = errorStyle.Render(label + " failed")
	case e.Mismatch:
		head = errorStyle.Render(label + " MISMATCH")
	default:
		head = labelStyle.Render(label+" = ") + valueStyle.Render(format.FormatUint(v))
	}
	lines := []string{dimStyle.Render(e.At.Format("15:04:05")) + " " + head}

	for _, r := range e.Results {
		status := successStyle.Render("ok")
		if r.Err != nil {
			status = errorStyle.Render(r.Err.Error())
		} else if e.Mismatch {
			status = warningStyle.Render(format.FormatUint(r.Result))
		}
		lines = append(lines, fmt.Sprintf("  %-18s %16s  %s",
			truncate(r.Name, 18), format.FormatTicks(r.Ticks, r.Unit), status))
	}
	return lines
}

// History is the list of rounds, newest first.
type History struct {
	entries []HistoryEntry
}

// Add prepends e, dropping the oldest entry beyond maxHistory.
func (h *History) Add(e HistoryEntry) {
	h.entries = append([]HistoryEntry{e}, h.entries...)
	if len(h.entries) > maxHistory {
		h.entries = h.entries[:maxHistory]
	}
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns the entries newest first.
func (h *History) Entries() []HistoryEntry { return h.entries }

// Clear drops every entry.
func (h *History) Clear() { h.entries = nil }

// Render returns at most height lines starting offset lines from the top.
func (h *History) Render(offset, height int) string {
	if len(h.entries) == 0 {
		return dimStyle.Render("No results yet. Type an index and press enter.")
	}
	var lines []string
	for _, e := range h.entries {
		lines = append(lines, e.Lines()...)
	}
	offset = min(max(offset, 0), max(len(lines)-1, 0))
	end := len(lines)
	if height > 0 {
		end = min(offset+height, len(lines))
	}
	return strings.Join(lines[offset:end], "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
