// Package app wires configuration, backends and the output modes together.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/fibdispatch/internal/cli"
	"github.com/agbru/fibdispatch/internal/config"
	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/guest"
	"github.com/agbru/fibdispatch/internal/logging"
	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/server"
	"github.com/agbru/fibdispatch/internal/tui"
	"github.com/agbru/fibdispatch/internal/ui"
)

// WasmAlgorithm is the factory name of the WebAssembly guest backend.
const WasmAlgorithm = "wasm"

// Application represents one fibdispatch invocation.
type Application struct {
	Config    config.AppConfig
	Factory   fibonacci.CalculatorFactory
	ErrWriter io.Writer
	In        io.Reader
	Logger    logging.Logger

	registerGuest bool
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom CalculatorFactory. The wasm backend is only
// registered on the default factory.
func WithFactory(f fibonacci.CalculatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithInput sets the reader used by the interactive session.
func WithInput(r io.Reader) AppOption {
	return func(a *Application) { a.In = r }
}

// New parses args (program name first) and prepares the backends.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = fibonacci.NewDefaultFactory()
		app.registerGuest = true
		// Registered before parsing so -algo accepts it; replaced below once
		// the engine is known.
		if err := app.Factory.Register(WasmAlgorithm, guest.NewCalculator()); err != nil {
			return nil, err
		}
	}

	programName := "fibdispatch"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.registerGuest && cfg.WasmEngine == config.EngineInterpreter {
		if err := app.Factory.Register(WasmAlgorithm, guest.NewCalculator(guest.WithInterpreter())); err != nil {
			return nil, err
		}
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, apperrors.NewConfigError("%v", err)
	}
	zerolog.SetGlobalLevel(level)
	app.Logger = logging.NewLogger(errWriter, "fibdispatch")
	return app, nil
}

// Run executes the configured mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	defer a.closeBackends()

	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	if a.Config.Trace {
		shutdown, err := setupTracing(a.ErrWriter)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: tracing: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				a.Logger.Error("flushing spans", err)
			}
		}()
	}

	switch {
	case a.Config.ServeAddr != "":
		return a.runServer(ctx)
	case a.Config.TUI:
		return a.runTUI(ctx)
	case a.Config.REPL:
		return a.runREPL(ctx, out)
	}
	return a.runCalculate(ctx, out)
}

// runCompletion prints a shell completion script.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer serves the HTTP API until a signal arrives.
func (a *Application) runServer(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	srv := server.New(a.Config.ServeAddr, a.Factory,
		server.WithLogger(a.Logger),
		server.WithRequestTimeout(a.Config.Timeout),
		server.WithVersion(Version))
	if err := srv.Start(ctx); err != nil {
		a.Logger.Error("server failed", err)
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runTUI launches the dashboard. Each round applies its own timeout.
func (a *Application) runTUI(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	return tui.Run(ctx, a.Factory, a.Config, Version)
}

// runREPL starts the line-oriented session.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	algo := a.Config.Algo
	if algo == orchestration.AllAlgorithms {
		algo = "native"
	}
	cli.NewREPL(a.Factory, cli.REPLConfig{
		DefaultAlgo: algo,
		Timeout:     a.Config.Timeout,
		Repeat:      a.Config.Repeat,
	}, a.In, out).Start(ctx)
	return apperrors.ExitSuccess
}

// closer is implemented by backends holding runtime resources.
type closer interface {
	Close(ctx context.Context) error
}

func (a *Application) closeBackends() {
	for name, calc := range a.Factory.GetAll() {
		if c, ok := calc.(closer); ok {
			if err := c.Close(context.Background()); err != nil {
				a.Logger.Error("closing backend", err, logging.String("algo", name))
			}
		}
	}
}

// IsHelpError reports whether err comes from -h or --help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
