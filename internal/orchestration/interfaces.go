package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/fibdispatch/internal/harness"
)

// CalculationResult is the outcome of benchmarking one backend.
type CalculationResult struct {
	// Name is the backend's display name.
	Name string
	// Result is the dispatched value. It is meaningless when Err is set.
	Result uint64
	// Ticks is the representative (median) tick count of the runs.
	Ticks uint64
	// Unit names the clock's tick unit.
	Unit string
	// Stats summarises the tick counts of every repetition.
	Stats harness.Stats
	// Duration is the wall time spent on all repetitions.
	Duration time.Duration
	// Err is set when the backend failed.
	Err error
}

// Measurement converts r into the shape consumed by harness.WriteReport.
func (r CalculationResult) Measurement(index uint64) harness.Measurement {
	return harness.Measurement{
		Index:   index,
		Result:  r.Result,
		Ticks:   r.Ticks,
		Unit:    r.Unit,
		Elapsed: r.Duration,
	}
}

// ProgressUpdate reports the completed fraction of one backend's runs.
type ProgressUpdate struct {
	CalculatorIndex int
	Value           float64
}

// PresentationOptions configures how the final result is shown.
type PresentationOptions struct {
	Index   uint64
	Verbose bool
}

// ProgressReporter displays progress while backends run.
//
// DisplayProgress is started in its own goroutine; it must drain
// progressChan until it is closed and then call wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer) {
	f(wg, progressChan, numCalculators, out)
}

// NullProgressReporter drains updates without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ErrorHandler maps a failure to a process exit code, reporting it on out.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// ResultPresenter renders comparison tables and final results.
type ResultPresenter interface {
	ErrorHandler

	// PresentComparisonTable shows every backend's outcome.
	PresentComparisonTable(results []CalculationResult, out io.Writer)

	// PresentResult shows the agreed result.
	PresentResult(result CalculationResult, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}
