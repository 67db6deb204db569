// Package config parses the command line and the FIBDISPATCH_* environment
// into an AppConfig.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/harness"
)

// EnvPrefix is the prefix shared by every environment override.
const EnvPrefix = "FIBDISPATCH_"

// Output formats accepted by -format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// MaxRepeat bounds -repeat. Every repetition keeps its tick count for the
// statistics.
const MaxRepeat = 1_000_000

// WASM engines accepted by -wasm-engine.
const (
	EngineCompiler    = "compiler"
	EngineInterpreter = "interpreter"
)

// AppConfig aggregates the application's configuration.
type AppConfig struct {
	// Index is the Fibonacci index to dispatch.
	Index uint64
	// IndexSet reports whether an index was given (argument or environment).
	IndexSet bool
	// Algo is the backend name, or "all" to compare every backend.
	Algo string
	// Repeat is the number of timed dispatches per backend.
	Repeat int
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Quiet prints only the two report lines.
	Quiet bool
	// Verbose adds configuration, statistics and allocation details.
	Verbose bool
	// Format selects the report encoding. Non-text formats replace the human
	// output on stdout unless OutputFile is set.
	Format string
	// OutputFile is where the report is saved (empty for none).
	OutputFile string
	// ServeAddr starts the HTTP service on this address when non-empty.
	ServeAddr string
	// TUI starts the interactive terminal interface.
	TUI bool
	// REPL starts the line-oriented interactive session.
	REPL bool
	// Completion prints a shell completion script for this shell and exits.
	Completion string
	// NoColor disables ANSI colors.
	NoColor bool
	// LogLevel is the zerolog level name.
	LogLevel string
	// WasmEngine selects the wazero engine for the wasm backend.
	WasmEngine string
	// Trace exports an OpenTelemetry span per benchmarked backend to stderr.
	Trace bool
}

// Default returns the configuration used when no flag or variable is set.
func Default() AppConfig {
	return AppConfig{
		Algo:       "native",
		Repeat:     1,
		Timeout:    time.Minute,
		Format:     FormatText,
		LogLevel:   "warn",
		WasmEngine: EngineCompiler,
	}
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Priority: command-line flags, then FIBDISPATCH_* variables, then defaults.
//
// Parameters:
//   - programName: Name shown in usage output.
//   - args: Command-line arguments after the program name.
//   - errWriter: Destination for usage and flag errors.
//   - availableAlgos: Registered backend names accepted by -algo.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp for -h, a ConfigError or ValidationError otherwise.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	cfg := Default()
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)
	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [flags] <index>\n\n", programName)
		fmt.Fprintf(errWriter, "Computes F(index) modulo 2^64 and reports the elapsed clock ticks.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	algoHelp := fmt.Sprintf("Backend to run: %s, or 'all' to compare.", strings.Join(availableAlgos, ", "))
	fs.StringVar(&cfg.Algo, "algo", cfg.Algo, algoHelp)
	fs.IntVar(&cfg.Repeat, "repeat", cfg.Repeat, "Number of timed dispatches per backend.")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum duration of the run.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the Result/cycles report.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Print configuration, statistics and allocations.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for -verbose.")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Report format: text, json or cbor.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Save the report to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for -output.")
	fs.StringVar(&cfg.ServeAddr, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.BoolVar(&cfg.TUI, "tui", false, "Start the interactive terminal interface.")
	fs.BoolVar(&cfg.REPL, "repl", false, "Start a line-oriented interactive session.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a completion script: bash, zsh or fish.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error, disabled.")
	fs.StringVar(&cfg.WasmEngine, "wasm-engine", cfg.WasmEngine, "wazero engine for the wasm backend: compiler or interpreter.")
	fs.BoolVar(&cfg.Trace, "trace", false, "Write OpenTelemetry spans to stderr.")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	applyEnvOverrides(&cfg, fs)

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		index, err := harness.ParseIndex(rest[0])
		if err != nil {
			fmt.Fprintf(errWriter, "Error: %v\n", err)
			return cfg, err
		}
		cfg.Index, cfg.IndexSet = index, true
	default:
		err := apperrors.NewConfigError("expected a single index argument, got %d", len(rest))
		fmt.Fprintf(errWriter, "Error: %v\n", err)
		return cfg, err
	}

	if err := cfg.Validate(availableAlgos); err != nil {
		fmt.Fprintf(errWriter, "Error: %v\n", err)
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the semantic consistency of the configuration.
//
// Parameters:
//   - availableAlgos: Registered backend names accepted by Algo.
//
// Returns:
//   - error: A ConfigError describing the first problem found, or nil.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Algo != "all" && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unknown algorithm %q (available: %s, all)", c.Algo, strings.Join(availableAlgos, ", "))
	}
	if c.Repeat < 1 || c.Repeat > MaxRepeat {
		return apperrors.NewConfigError("repeat must be in [1, %d], got %d", MaxRepeat, c.Repeat)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatCBOR:
	default:
		return apperrors.NewConfigError("unknown format %q (expected text, json or cbor)", c.Format)
	}
	switch c.WasmEngine {
	case EngineCompiler, EngineInterpreter:
	default:
		return apperrors.NewConfigError("unknown wasm engine %q (expected compiler or interpreter)", c.WasmEngine)
	}
	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported shell %q (expected bash, zsh or fish)", c.Completion)
	}
	if !c.IndexSet && !c.Interactive() {
		return apperrors.NewConfigError("missing index argument")
	}
	return nil
}

// Interactive reports whether the selected mode runs without a positional
// index.
func (c AppConfig) Interactive() bool {
	return c.ServeAddr != "" || c.TUI || c.REPL || c.Completion != ""
}
