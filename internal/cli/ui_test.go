package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/ui"
)

// mockSpinner records spinner calls.
type mockSpinner struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	suffixes []string
}

func (m *mockSpinner) Start() { m.mu.Lock(); m.started = true; m.mu.Unlock() }
func (m *mockSpinner) Stop()  { m.mu.Lock(); m.stopped = true; m.mu.Unlock() }
func (m *mockSpinner) UpdateSuffix(s string) {
	m.mu.Lock()
	m.suffixes = append(m.suffixes, s)
	m.mu.Unlock()
}

func useNoColor(t *testing.T) {
	t.Helper()
	saved := ui.CurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(saved) })
}

func TestDisplayResult(t *testing.T) {
	useNoColor(t)

	base := orchestration.CalculationResult{
		Name:     "Native (Go loop)",
		Result:   6765,
		Ticks:    120,
		Unit:     "ns",
		Stats:    harness.Stats{Runs: 3, Min: 100, Max: 150, Mean: 123, Median: 120},
		Duration: 2 * time.Microsecond,
	}

	tests := []struct {
		name     string
		result   orchestration.CalculationResult
		opts     orchestration.PresentationOptions
		contains []string
		excludes []string
	}{
		{
			name:     "plain report",
			result:   base,
			opts:     orchestration.PresentationOptions{Index: 20},
			contains: []string{"Result: 6765\n In 120 cycles\n"},
			excludes: []string{"Backend:", "Tick statistics"},
		},
		{
			name:     "verbose details",
			result:   base,
			opts:     orchestration.PresentationOptions{Index: 20, Verbose: true},
			contains: []string{"Backend:      Native (Go loop)", "F(20) = 6,765", "Tick statistics over 3 runs (ns)", "median: 120", "Wall time:"},
			excludes: []string{"mod 2^64"},
		},
		{
			name:     "wraparound notice",
			result:   orchestration.CalculationResult{Name: "n", Result: 1293530146158671551, Stats: harness.Stats{Runs: 1}},
			opts:     orchestration.PresentationOptions{Index: 94, Verbose: true},
			contains: []string{"Result: 1293530146158671551", "F(94) mod 2^64"},
			excludes: []string{"Tick statistics"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			DisplayResult(tt.result, tt.opts, &buf)
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestDisplayProgress(t *testing.T) {
	useNoColor(t)
	mock := &mockSpinner{}
	saved := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	t.Cleanup(func() { newSpinner = saved })

	ch := make(chan orchestration.ProgressUpdate, 4)
	ch <- orchestration.ProgressUpdate{CalculatorIndex: 0, Value: 0.5}
	ch <- orchestration.ProgressUpdate{CalculatorIndex: 1, Value: 1}
	ch <- orchestration.ProgressUpdate{CalculatorIndex: 0, Value: 1}
	close(ch)

	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, 2, &buf)
	wg.Wait()

	if !mock.started || !mock.stopped {
		t.Errorf("spinner started=%v stopped=%v, want both", mock.started, mock.stopped)
	}
	if len(mock.suffixes) < 4 {
		t.Errorf("got %d suffix updates, want at least 4", len(mock.suffixes))
	}
	out := buf.String()
	if !strings.Contains(out, "Benchmarking 2 backends") || !strings.Contains(out, "100.00%") {
		t.Errorf("final line = %q", out)
	}
}

func TestDisplayProgress_NoCalculators(t *testing.T) {
	ch := make(chan orchestration.ProgressUpdate, 1)
	ch <- orchestration.ProgressUpdate{}
	close(ch)

	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, 0, &buf)
	wg.Wait()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	rs := &realSpinner{spinner.New(spinner.CharSets[14], 10*time.Millisecond, spinner.WithWriter(&buf))}
	rs.Start()
	rs.UpdateSuffix(" working")
	rs.Stop()
}
