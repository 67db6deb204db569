package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/format"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/ui"
)

const (
	// ProgressRefreshRate is the spinner and progress bar refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in cells of the progress bar.
	ProgressBarWidth = 30
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[14], ProgressRefreshRate, options...)}
}

// DisplayProgress renders a spinner with the aggregated progress of every
// backend until progressChan is closed, then prints the final bar.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	label := "Benchmarking"
	if agg.IsMultiCalculator() {
		label = fmt.Sprintf("Benchmarking %d backends", numCalculators)
	}
	render := func(avg float64, eta time.Duration) string {
		return label + " " + format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth)
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(" " + render(0, 0))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintf(out, "%s\n", render(agg.CalculateAverage(), 0))
				return
			}
			p := agg.Update(update)
			s.UpdateSuffix(" " + render(p.AverageProgress, p.ETA))
		case <-ticker.C:
			s.UpdateSuffix(" " + render(agg.CalculateAverage(), agg.GetETA()))
		}
	}
}

// DisplayResult prints the benchmark report of result. The two report lines
// are never coloured so they stay machine-readable; verbose mode adds the
// backend, the grouped value, a wraparound notice and tick statistics.
func DisplayResult(result orchestration.CalculationResult, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "\n--- Result ---\n")
	_ = harness.WriteReport(out, result.Measurement(opts.Index))

	if !opts.Verbose {
		return
	}

	fmt.Fprintf(out, "\nBackend:      %s\n", ui.Paint(ui.ColorPrimary(), result.Name))
	fmt.Fprintf(out, "Value:        F(%d) = %s\n", opts.Index, format.FormatUint(result.Result))
	if fibonacci.Wraps(opts.Index) {
		fmt.Fprintf(out, "%sNote: F(%d) exceeds 64 bits; the value is F(%d) mod 2^64.%s\n",
			ui.ColorYellow(), opts.Index, opts.Index, ui.ColorReset())
	}

	st := result.Stats
	if st.Runs > 1 {
		fmt.Fprintf(out, "\nTick statistics over %d runs (%s):\n", st.Runs, result.Unit)
		fmt.Fprintf(out, "  min:    %s\n", format.FormatUint(st.Min))
		fmt.Fprintf(out, "  median: %s\n", format.FormatUint(st.Median))
		fmt.Fprintf(out, "  mean:   %s\n", format.FormatUint(st.Mean))
		fmt.Fprintf(out, "  max:    %s\n", format.FormatUint(st.Max))
	}
	fmt.Fprintf(out, "Wall time:    %s\n", format.FormatExecutionDuration(result.Duration))
}

// padRight appends length spaces to s.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return fmt.Sprintf("%s%*s", s, length, "")
}
