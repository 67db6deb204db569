package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/format"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/ui"
)

// REPLConfig configures an interactive session.
type REPLConfig struct {
	// DefaultAlgo is the backend used by plain index input.
	DefaultAlgo string
	// Timeout bounds each dispatch.
	Timeout time.Duration
	// Repeat is the number of timed dispatches per command.
	Repeat int
	// HexOutput shows values in hexadecimal.
	HexOutput bool
}

// REPL is a line-oriented interactive session over the registered backends.
type REPL struct {
	config      REPLConfig
	factory     fibonacci.CalculatorFactory
	clock       harness.Clock
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a session reading from in and writing to out.
func NewREPL(factory fibonacci.CalculatorFactory, config REPLConfig, in io.Reader, out io.Writer) *REPL {
	current := config.DefaultAlgo
	if _, err := factory.Get(current); err != nil {
		if names := factory.List(); len(names) > 0 {
			current = names[0]
		}
	}
	if config.Repeat < 1 {
		config.Repeat = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &REPL{
		config:      config,
		factory:     factory,
		clock:       harness.NewMonotonicClock(),
		currentAlgo: current,
		in:          in,
		out:         out,
	}
}

// Start runs the session until "exit", end of input or ctx is done.
func (r *REPL) Start(ctx context.Context) {
	fmt.Fprintf(r.out, "%sfibdispatch interactive mode%s (type %shelp%s for commands)\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())

	scanner := bufio.NewScanner(r.in)
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(r.out, ui.Paint(ui.ColorGreen(), "fib> "))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			}
			fmt.Fprintln(r.out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !r.processCommand(ctx, line) {
			return
		}
	}
}

func (r *REPL) printHelp() {
	cmd := func(name, desc string) {
		fmt.Fprintf(r.out, "  %s%-14s%s %s\n", ui.ColorYellow(), name, ui.ColorReset(), desc)
	}
	fmt.Fprintf(r.out, "%sCommands:%s\n", ui.ColorBold(), ui.ColorReset())
	cmd("<index>", "dispatch F(index) on the current backend")
	cmd("calc <index>", "same as <index>")
	cmd("compare <index>", "dispatch on every backend and cross-check")
	cmd("algo <name>", "switch backend ("+strings.Join(r.factory.List(), ", ")+")")
	cmd("list", "list backends")
	cmd("hex", "toggle hexadecimal values")
	cmd("status", "show the session settings")
	cmd("exit", "leave")
}

// exporter is implemented by backends that run a guest module.
type exporter interface {
	Exports(ctx context.Context) ([]string, error)
}

func (r *REPL) listBackends(ctx context.Context) {
	for _, name := range r.factory.List() {
		marker := "  "
		if name == r.currentAlgo {
			marker = ui.Paint(ui.ColorGreen(), "* ")
		}
		calc, _ := r.factory.Get(name)
		fmt.Fprintf(r.out, "%s%-8s %s\n", marker, name, calc.Name())
		if e, ok := calc.(exporter); ok {
			exports, err := e.Exports(ctx)
			if err != nil {
				fmt.Fprintf(r.out, "           %s\n", ui.Paint(ui.ColorRed(), "exports unavailable: "+err.Error()))
				continue
			}
			fmt.Fprintf(r.out, "           exports: %s\n", strings.Join(exports, ", "))
		}
	}
}

// processCommand executes one line and reports whether to continue.
func (r *REPL) processCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "calc", "c":
		if index, ok := r.indexArg(args); ok {
			r.dispatch(ctx, index)
		}
	case "compare", "cmp":
		if index, ok := r.indexArg(args); ok {
			r.compare(ctx, index)
		}
	case "algo", "a":
		r.switchAlgo(args)
	case "list", "ls":
		r.listBackends(ctx)
	case "hex":
		r.config.HexOutput = !r.config.HexOutput
		fmt.Fprintf(r.out, "Hexadecimal display: %t\n", r.config.HexOutput)
	case "status", "st":
		fmt.Fprintf(r.out, "Backend: %s, repeat: %d, timeout: %s, hex: %t\n",
			r.currentAlgo, r.config.Repeat, r.config.Timeout, r.config.HexOutput)
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		return false
	default:
		index, err := harness.ParseIndex(cmd)
		if err != nil {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
			return true
		}
		r.dispatch(ctx, index)
	}
	return true
}

func (r *REPL) indexArg(args []string) (uint64, bool) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sexpected exactly one index%s\n", ui.ColorRed(), ui.ColorReset())
		return 0, false
	}
	index, err := harness.ParseIndex(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return 0, false
	}
	return index, true
}

func (r *REPL) switchAlgo(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "Usage: algo <name> (%s)\n", strings.Join(r.factory.List(), ", "))
		return
	}
	name := strings.ToLower(args[0])
	calc, err := r.factory.Get(name)
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.currentAlgo = name
	fmt.Fprintf(r.out, "Backend changed to %s\n", ui.Paint(ui.ColorPrimary(), calc.Name()))
}

func (r *REPL) formatValue(v uint64) string {
	if r.config.HexOutput {
		return fmt.Sprintf("%#x", v)
	}
	return format.FormatUint(v)
}

func (r *REPL) dispatch(ctx context.Context, index uint64) {
	calc, err := r.factory.Get(r.currentAlgo)
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	res, err := harness.Bench(ctx, calc, index, r.config.Repeat, r.clock, nil)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	_ = harness.WriteReport(r.out, res.Measurement)
	fmt.Fprintf(r.out, "  F(%d) = %s", index, ui.Paint(ui.ColorGreen(), r.formatValue(res.Result)))
	if fibonacci.Wraps(index) {
		fmt.Fprint(r.out, ui.Paint(ui.ColorYellow(), " (mod 2^64)"))
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) compare(ctx context.Context, index uint64) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	calcs := orchestration.GetCalculatorsToRun(orchestration.AllAlgorithms, r.factory)
	results := orchestration.ExecuteCalculations(ctx, calcs,
		orchestration.RunOptions{Index: index, Repeat: r.config.Repeat, Clock: r.clock},
		orchestration.NullProgressReporter{}, io.Discard)

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(r.out, "  %-22s %s\n", res.Name, ui.Paint(ui.ColorRed(), "error: "+res.Err.Error()))
			continue
		}
		fmt.Fprintf(r.out, "  %-22s %s  %s\n", res.Name, r.formatValue(res.Result), format.FormatTicks(res.Ticks, res.Unit))
	}
	if orchestration.MismatchedResults(results) {
		fmt.Fprintln(r.out, ui.Paint(ui.ColorRed(), "INCONSISTENT results"))
		return
	}
	fmt.Fprintln(r.out, ui.Paint(ui.ColorGreen(), "all backends agree"))
}
