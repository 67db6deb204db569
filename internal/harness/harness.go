// Package harness times Fibonacci dispatches for benchmarking. It is kept
// apart from the fibonacci package: the core only exposes Dispatch, and the
// harness is an optional consumer of it.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/fibonacci"
)

// ErrNondeterministic is returned by Bench when two repetitions of the same
// dispatch disagree.
var ErrNondeterministic = errors.New("dispatch returned different results for the same index")

// ParseIndex parses the harness's positional argument as a decimal uint64.
func ParseIndex(arg string) (uint64, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, apperrors.ValidationError{Field: "index", Message: "missing value"}
	}
	index, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError{
			Field:   "index",
			Message: fmt.Sprintf("%q is not a decimal integer in [0, %d]", arg, uint64(1<<64-1)),
		}
	}
	return index, nil
}

// Measurement is the outcome of one timed dispatch.
type Measurement struct {
	Index  uint64
	Result uint64
	// Ticks is the clock difference around the dispatch. For a benchmark it
	// holds the median over all repetitions.
	Ticks uint64
	// Unit is the clock's tick unit.
	Unit string
	// Elapsed is the wall-clock time of the dispatch (or of all repetitions).
	Elapsed time.Duration
}

// Preparer is implemented by calculators with setup work (starting a runtime,
// instantiating a module) that must stay out of the timed region.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Measure reads clock, dispatches index on calc and reads clock again. If calc
// is a Preparer, it is prepared before the first clock read.
func Measure(ctx context.Context, calc fibonacci.Calculator, index uint64, clock Clock) (Measurement, error) {
	m := Measurement{Index: index, Unit: clock.Unit()}
	if p, ok := calc.(Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			return m, err
		}
	}
	wallStart := time.Now()
	start := clock.Ticks()
	result, err := calc.Dispatch(ctx, index)
	stop := clock.Ticks()
	m.Elapsed = time.Since(wallStart)
	if err != nil {
		return m, err
	}
	m.Result = result
	if stop > start {
		m.Ticks = stop - start
	}
	return m, nil
}

// Stats summarises the tick counts of a benchmark.
type Stats struct {
	Runs   int
	Min    uint64
	Max    uint64
	Mean   uint64
	Median uint64
}

// BenchResult is the outcome of Bench. Its Measurement carries the common
// result, the median tick count and the total wall-clock time.
type BenchResult struct {
	Measurement
	Stats Stats
}

// maxPrealloc bounds the up-front allocation of Bench's tick slice.
const maxPrealloc = 4096

// Bench measures repeat dispatches of index and checks that all of them
// return the same value. onProgress, when non-nil, receives the completed
// fraction in [0, 1] a bounded number of times.
func Bench(ctx context.Context, calc fibonacci.Calculator, index uint64, repeat int, clock Clock, onProgress func(float64)) (BenchResult, error) {
	if repeat < 1 {
		repeat = 1
	}
	report := func(float64) {}
	if onProgress != nil {
		report = onProgress
	}
	every := repeat / 100
	if every < 1 {
		every = 1
	}

	ticks := make([]uint64, 0, min(repeat, maxPrealloc))
	var res BenchResult
	for i := 0; i < repeat; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		m, err := Measure(ctx, calc, index, clock)
		if err != nil {
			return res, err
		}
		if i == 0 {
			res.Measurement = m
		} else if m.Result != res.Result {
			return res, fmt.Errorf("%w: index %d gave %d then %d", ErrNondeterministic, index, res.Result, m.Result)
		} else {
			res.Elapsed += m.Elapsed
		}
		ticks = append(ticks, m.Ticks)
		if (i+1)%every == 0 || i+1 == repeat {
			report(float64(i+1) / float64(repeat))
		}
	}

	res.Stats = summarize(ticks)
	res.Ticks = res.Stats.Median
	return res, nil
}

func summarize(ticks []uint64) Stats {
	s := Stats{Runs: len(ticks)}
	if len(ticks) == 0 {
		return s
	}
	sorted := slices.Clone(ticks)
	slices.Sort(sorted)
	s.Min, s.Max = sorted[0], sorted[len(sorted)-1]

	var sum uint64
	for _, t := range sorted {
		sum += t
	}
	s.Mean = sum / uint64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		s.Median = sorted[mid]
	} else {
		s.Median = sorted[mid-1] + (sorted[mid]-sorted[mid-1])/2
	}
	return s
}

// FormatReport returns the two-line harness report:
//
//	Result: <value>
//	 In <ticks> cycles
func FormatReport(m Measurement) string {
	return fmt.Sprintf("Result: %d\n In %d cycles\n", m.Result, m.Ticks)
}

// WriteReport writes FormatReport(m) to w.
func WriteReport(w io.Writer, m Measurement) error {
	_, err := io.WriteString(w, FormatReport(m))
	return err
}
