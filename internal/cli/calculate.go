package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fibdispatch/internal/config"
	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/ui"
)

// PrintExecutionConfig describes the run about to start.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Dispatching %sF(%d)%s %s%d%s time(s) per backend, timeout %s%s%s.\n",
		ui.ColorCyan(), cfg.Index, ui.ColorReset(),
		ui.ColorYellow(), cfg.Repeat, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, %s/%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset(), runtime.GOOS, runtime.GOARCH)
	if fibonacci.Wraps(cfg.Index) {
		fmt.Fprintf(out, "%sIndex %d is above %d: the result wraps modulo 2^64.%s\n",
			ui.ColorYellow(), cfg.Index, fibonacci.MaxExactIndex, ui.ColorReset())
	}
}

// PrintExecutionMode states whether one backend runs or several are compared.
func PrintExecutionMode(calculators []fibonacci.Calculator, out io.Writer) {
	var mode string
	switch len(calculators) {
	case 0:
		mode = "no backend selected"
	case 1:
		mode = fmt.Sprintf("single run on the %s backend", ui.Paint(ui.ColorPrimary(), calculators[0].Name()))
	default:
		mode = fmt.Sprintf("parallel comparison of %d backends", len(calculators))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", mode)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
