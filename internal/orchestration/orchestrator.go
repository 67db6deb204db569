package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/harness"
)

// ProgressBufferMultiplier sizes the progress channel per backend so slow
// displays rarely block a benchmark goroutine.
const ProgressBufferMultiplier = 5

const tracerName = "github.com/agbru/fibdispatch/internal/orchestration"

// RunOptions describes one benchmark round.
type RunOptions struct {
	Index  uint64
	Repeat int
	// Clock defaults to harness.NewMonotonicClock when nil.
	Clock harness.Clock
	// TracerProvider defaults to the global provider when nil.
	TracerProvider trace.TracerProvider
}

// ExecuteCalculations benchmarks every calculator concurrently on the same
// index and returns their results in input order. Failures are recorded per
// result and never cancel sibling backends.
func ExecuteCalculations(ctx context.Context, calculators []fibonacci.Calculator, opts RunOptions, progressReporter ProgressReporter, out io.Writer) []CalculationResult {
	clock := opts.Clock
	if clock == nil {
		clock = harness.NewMonotonicClock()
	}
	repeat := max(opts.Repeat, 1)

	g, ctx := errgroup.WithContext(ctx)
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)
	for i, calc := range calculators {
		g.Go(func() error {
			spanCtx, span := tracer.Start(ctx, "fibdispatch.bench")
			defer span.End()
			span.SetAttributes(
				attribute.String("fibdispatch.calculator", calc.Name()),
				attribute.Int64("fibdispatch.index", int64(opts.Index)),
				attribute.Int("fibdispatch.repeat", repeat),
			)

			// Intermediate updates may be dropped; the final one must reach the
			// display, which drains the channel until it is closed after Wait.
			onProgress := func(v float64) {
				u := ProgressUpdate{CalculatorIndex: i, Value: v}
				if v >= 1 {
					progressChan <- u
					return
				}
				select {
				case progressChan <- u:
				default:
				}
			}

			start := time.Now()
			res, err := harness.Bench(spanCtx, calc, opts.Index, repeat, clock, onProgress)
			results[i] = CalculationResult{
				Name:     calc.Name(),
				Result:   res.Result,
				Ticks:    res.Ticks,
				Unit:     res.Unit,
				Stats:    res.Stats,
				Duration: time.Since(start),
				Err:      err,
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetAttributes(attribute.Int64("fibdispatch.ticks", int64(res.Ticks)))
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults orders results (successes first, then by
// duration), presents the comparison table and cross-checks every successful
// value. It returns the process exit code.
func AnalyzeComparisonResults(results []CalculationResult, opts PresentationOptions, presenter ResultPresenter, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var first *CalculationResult
	var firstErr error
	for i := range results {
		if results[i].Err != nil {
			if firstErr == nil {
				firstErr = results[i].Err
			}
			continue
		}
		if first == nil {
			first = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if first == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No backend could complete the dispatch.\n")
		return presenter.HandleError(firstErr, 0, out)
	}

	if MismatchedResults(results) {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! The backends disagree on F(%d).\n", opts.Index)
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	presenter.PresentResult(*first, opts, out)
	return apperrors.ExitSuccess
}

// MismatchedResults reports whether two successful results disagree.
func MismatchedResults(results []CalculationResult) bool {
	var ref *uint64
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if ref == nil {
			ref = &results[i].Result
			continue
		}
		if results[i].Result != *ref {
			return true
		}
	}
	return false
}
