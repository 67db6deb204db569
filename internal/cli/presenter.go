package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/format"
	"github.com/agbru/fibdispatch/internal/metrics"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/ui"
)

// CLIProgressReporter shows a spinner and progress bar on the terminal.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numCalculators int, out io.Writer) {
	DisplayProgress(wg, progressChan, numCalculators, out)
}

// CLIResultPresenter renders results for the terminal.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
)

var comparisonHeaders = [...]string{"Backend", "Result", "Ticks", "Duration", "Status"}

// PresentComparisonTable prints one row per backend. Padding is computed on
// the plain text so colour codes do not break the alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.CalculationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	rows := make([][len(comparisonHeaders)]string, len(results))
	var widths [len(comparisonHeaders)]int
	for i, h := range comparisonHeaders {
		widths[i] = len(h)
	}
	for r, res := range results {
		row := [len(comparisonHeaders)]string{res.Name, "-", "-", durationCell(res.Duration), ""}
		if res.Err == nil {
			row[1] = format.FormatUint(res.Result)
			row[2] = format.FormatTicks(res.Ticks, res.Unit)
		}
		rows[r] = row
		for i, cell := range row[:len(row)-1] {
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}

	for i, h := range comparisonHeaders {
		fmt.Fprintf(out, "%s%s%s", ui.ColorUnderline(), h, ui.ColorReset())
		if i < len(comparisonHeaders)-1 {
			fmt.Fprint(out, padRight("", widths[i]-len(h)+3))
		}
	}
	fmt.Fprintln(out)

	colors := [...]func() string{ui.ColorPrimary, ui.ColorBold, ui.ColorYellow, ui.ColorCyan}
	for r, res := range results {
		for i, cell := range rows[r][:len(comparisonHeaders)-1] {
			fmt.Fprintf(out, "%s%s", ui.Paint(colors[i](), cell), padRight("", widths[i]-len([]rune(cell))+3))
		}
		if res.Err != nil {
			fmt.Fprintln(out, ui.Paint(ui.ColorRed(), fmt.Sprintf("FAILED (%v)", res.Err)))
		} else {
			fmt.Fprintln(out, ui.Paint(ui.ColorGreen(), "OK"))
		}
	}
}

func durationCell(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// PresentResult prints the agreed result with DisplayResult.
func (CLIResultPresenter) PresentResult(result orchestration.CalculationResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts, out)
}

// FormatDuration formats d like the comparison table does.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError reports err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// CLIColorProvider exposes the active theme to apperrors.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// DisplayMemoryStats prints what a benchmark allocated.
func DisplayMemoryStats(delta metrics.MemoryDelta, out io.Writer) {
	fmt.Fprintf(out, "\nMemory:\n")
	fmt.Fprintf(out, "  Allocated:  %s in %s objects\n", format.FormatBytes(delta.Allocated), format.FormatUint(delta.Objects))
	fmt.Fprintf(out, "  Peak heap:  %s\n", format.FormatBytes(delta.PeakHeap))
	fmt.Fprintf(out, "  GC cycles:  %d (%.2fms paused)\n", delta.GCCycles, float64(delta.PauseTotalNs)/1e6)
}
