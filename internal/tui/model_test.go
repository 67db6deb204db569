package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/fibdispatch/internal/config"
	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/sysmon"
)

// shiftedCalculator disagrees with the native backend.
type shiftedCalculator struct{}

func (shiftedCalculator) Name() string { return "shifted" }

func (shiftedCalculator) Dispatch(_ context.Context, index uint64) (uint64, error) {
	return fibonacci.Dispatch(index) + 1, nil
}

func newTestModel(t *testing.T, cfg config.AppConfig, withShifted bool) Model {
	t.Helper()
	factory := fibonacci.NewDefaultFactory()
	if withShifted {
		if err := factory.Register("shifted", shiftedCalculator{}); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	var ticks uint64
	m := NewModel(context.Background(), factory, cfg, "test",
		WithSampler(sysmon.SamplerFunc(func(context.Context) sysmon.Stats {
			return sysmon.Stats{CPUPercent: 25, MemPercent: 50, ProcessRSS: 2048}
		})),
		WithClock(harness.FuncClock{Read: func() uint64 { ticks += 10; return ticks }, TickUnit: "ns"}),
	)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// send delivers msg and drops the returned command.
func send(m Model, msg tea.Msg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

// press delivers msg and runs the resulting round synchronously.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd == nil {
		return m
	}
	if done, ok := cmd().(RoundDoneMsg); ok {
		updated, _ = m.Update(done)
		m = updated.(Model)
	}
	return m
}

func TestModel_DispatchFromInput(t *testing.T) {
	m := newTestModel(t, config.Default(), false)
	m = send(m, keyRunes("20"))
	if got := m.input.Value(); got != "20" {
		t.Fatalf("input = %q, want 20", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.running {
		t.Error("round should be finished")
	}
	if m.history.Len() != 1 {
		t.Fatalf("history length = %d, want 1", m.history.Len())
	}
	v, ok := m.history.Entries()[0].Value()
	if !ok || v != 6765 {
		t.Errorf("value = %d (%v), want 6765", v, ok)
	}
	if m.ticks.Last() != 10 {
		t.Errorf("tick sparkline sample = %v, want 10", m.ticks.Last())
	}
}

func TestModel_IgnoresNonDigits(t *testing.T) {
	m := newTestModel(t, config.Default(), false)
	m = send(m, keyRunes("1a2"))
	if got := m.input.Value(); got != "" {
		t.Errorf("input = %q, want non-digit runes rejected", got)
	}
	m = send(m, keyRunes("7"))
	if got := m.input.Value(); got != "7" {
		t.Errorf("input = %q, want 7", got)
	}
}

func TestModel_InvalidIndexSetsStatus(t *testing.T) {
	m := newTestModel(t, config.Default(), false)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.history.Len() != 0 {
		t.Error("an empty index must not start a round")
	}
	if !strings.Contains(m.status, "missing value") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_PresetIndexAndAlgo(t *testing.T) {
	cfg := config.Default()
	cfg.Index, cfg.IndexSet = 93, true
	cfg.Algo = "shifted"
	m := newTestModel(t, cfg, true)
	if m.input.Value() != "93" {
		t.Errorf("input = %q, want 93", m.input.Value())
	}
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1", m.selected)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.selected != 0 {
		t.Errorf("tab should cycle back to 0, got %d", m.selected)
	}
}

func TestModel_CompareFlagsMismatch(t *testing.T) {
	cfg := config.Default()
	cfg.Index, cfg.IndexSet = 10, true
	m := newTestModel(t, cfg, true)

	m = press(t, m, keyRunes("c"))
	if m.history.Len() != 1 {
		t.Fatalf("history length = %d", m.history.Len())
	}
	e := m.history.Entries()[0]
	if len(e.Results) != 2 || !e.Mismatch {
		t.Errorf("entry = %+v, want two results flagged as mismatch", e)
	}
	if !strings.Contains(m.View(), "MISMATCH") {
		t.Error("view should show the mismatch")
	}

	m = send(m, keyRunes("x"))
	if m.history.Len() != 0 || m.ticks.Len() != 0 {
		t.Error("clear should drop history and tick samples")
	}
}

func TestModel_StaleRoundIgnored(t *testing.T) {
	m := newTestModel(t, config.Default(), false)
	m.generation = 3
	updated, _ := m.Update(RoundDoneMsg{Generation: 2, Index: 5})
	stale := updated.(Model)
	if stale.history.Len() != 0 {
		t.Error("results of an older generation must be dropped")
	}
	updated, _ = m.Update(ProgressMsg{Generation: 2, AverageProgress: 0.5})
	if updated.(Model).progress != 0 {
		t.Error("progress of an older generation must be dropped")
	}
}

func TestModel_SysStats(t *testing.T) {
	m := newTestModel(t, config.Default(), false)
	updated, _ := m.Update(SysStatsMsg{CPUPercent: 42, MemPercent: 10, ProcessRSS: 1536})
	m = updated.(Model)
	if m.cpu.Last() != 42 || m.mem.Last() != 10 {
		t.Errorf("cpu/mem = %v/%v", m.cpu.Last(), m.mem.Last())
	}
	footer := m.renderFooter()
	if !strings.Contains(footer, "42.0%") || !strings.Contains(footer, "1.5 KiB") {
		t.Errorf("footer = %q", footer)
	}
}

func TestModel_TickSamplesSystem(t *testing.T) {
	m := newTestModel(t, config.Default(), false)
	_, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule sampling")
	}
}

func TestModel_QuitAndHelp(t *testing.T) {
	m := newTestModel(t, config.Default(), false)

	updated, _ := m.Update(keyRunes("?"))
	if !updated.(Model).help.ShowAll {
		t.Error("? should expand the help")
	}

	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := NewModel(context.Background(), fibonacci.NewDefaultFactory(), config.Default(), "dev",
		WithSampler(sysmon.SamplerFunc(func(context.Context) sysmon.Stats { return sysmon.Stats{} })))
	if m.View() != "Initializing..." {
		t.Errorf("View = %q", m.View())
	}
}

func TestRoundStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "done"},
		{"timeout", context.DeadlineExceeded, "timed out"},
		{"canceled", context.Canceled, "canceled"},
		{"generic", errors.New("boom"), "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundStatus([]orchestration.CalculationResult{{Err: tt.err}})
			if !strings.Contains(got, tt.want) {
				t.Errorf("roundStatus = %q, want %q", got, tt.want)
			}
		})
	}
}
