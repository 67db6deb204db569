package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/fibdispatch/internal/cli"
	"github.com/agbru/fibdispatch/internal/config"
	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/logging"
	"github.com/agbru/fibdispatch/internal/metrics"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/ui"
)

// runCalculate benchmarks the selected backends on the configured index.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculators := orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory)
	if len(calculators) == 0 {
		fmt.Fprintf(a.ErrWriter, "Error: no backend named %q\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	machine := a.Config.Format != config.FormatText && a.Config.OutputFile == ""
	human := !a.Config.Quiet && !machine

	var reporter orchestration.ProgressReporter = orchestration.NullProgressReporter{}
	progressOut := io.Discard
	if human {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(calculators, out)
		if a.Config.Repeat > 1 {
			reporter = cli.CLIProgressReporter{}
			progressOut = out
		}
	}

	a.Logger.Debug("benchmark starting",
		logging.Uint64("index", a.Config.Index),
		logging.String("algo", a.Config.Algo),
		logging.Int("repeat", a.Config.Repeat))

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	results := orchestration.ExecuteCalculations(ctx, calculators,
		orchestration.RunOptions{Index: a.Config.Index, Repeat: a.Config.Repeat},
		reporter, progressOut)
	delta := metrics.Delta(before, collector.Snapshot())

	if !human {
		return a.reportBare(results, machine, out)
	}

	opts := orchestration.PresentationOptions{Index: a.Config.Index, Verbose: a.Config.Verbose}
	exitCode := orchestration.AnalyzeComparisonResults(results, opts, cli.CLIResultPresenter{}, out)
	if a.Config.Verbose {
		cli.DisplayMemoryStats(delta, out)
	}
	if exitCode != apperrors.ExitSuccess {
		return exitCode
	}
	// AnalyzeComparisonResults sorted the successful result first.
	if code := a.saveReport(results[0]); code != apperrors.ExitSuccess {
		return code
	}
	if a.Config.OutputFile != "" {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
	}
	return apperrors.ExitSuccess
}

// reportBare handles -quiet and machine-readable stdout: only the report is
// written to out, diagnostics go to ErrWriter.
func (a *Application) reportBare(results []orchestration.CalculationResult, machine bool, out io.Writer) int {
	best, code := a.agreedResult(results)
	if best == nil {
		return code
	}
	var err error
	if machine {
		err = cli.EncodeReport(out, a.Config.Format, cli.NewReport(*best, a.Config.Index))
	} else {
		err = cli.DisplayQuietResult(out, *best, a.Config.Index)
	}
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error writing report: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return a.saveReport(*best)
}

// agreedResult returns the fastest successful result when every successful
// backend agrees.
func (a *Application) agreedResult(results []orchestration.CalculationResult) (*orchestration.CalculationResult, int) {
	var best *orchestration.CalculationResult
	var firstErr error
	for i := range results {
		switch {
		case results[i].Err != nil:
			if firstErr == nil {
				firstErr = results[i].Err
			}
		case best == nil || results[i].Duration < best.Duration:
			best = &results[i]
		}
	}
	if best == nil {
		return nil, apperrors.HandleCalculationError(firstErr, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	if orchestration.MismatchedResults(results) {
		fmt.Fprintf(a.ErrWriter, "Error: the backends disagree on F(%d)\n", a.Config.Index)
		return nil, apperrors.ExitErrorMismatch
	}
	return best, apperrors.ExitSuccess
}

func (a *Application) saveReport(result orchestration.CalculationResult) int {
	if a.Config.OutputFile == "" {
		return apperrors.ExitSuccess
	}
	if err := cli.WriteResultToFile(a.Config.OutputFile, a.Config.Format, cli.NewReport(result, a.Config.Index)); err != nil {
		a.Logger.Error("saving report", err, logging.String("path", a.Config.OutputFile))
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
