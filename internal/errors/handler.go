package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when reporting errors.
// The CLI passes its theme; tests can pass a no-op implementation.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// ExitCode maps an error to the process exit code that reports it.
//
// Parameters:
//   - err: The error to classify (nil means success).
//
// Returns:
//   - int: One of the Exit* constants.
func ExitCode(err error) int {
	var configErr ConfigError
	var validationErr ValidationError
	var timeoutErr TimeoutError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// HandleCalculationError writes a status line describing err and returns the
// matching exit code. A nil error writes nothing and returns ExitSuccess.
//
// Parameters:
//   - err: The error returned by the dispatch.
//   - duration: Time spent before the failure (omitted from the message when zero).
//   - out: The writer for the status line.
//   - colors: Escape sequences for highlighting.
//
// Returns:
//   - int: The exit code for err.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	code := ExitCode(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: %sFailure (Timeout)%s. The execution limit was reached%s.\n",
			colors.Red(), colors.Reset(), suffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "Status: %sCanceled%s. The dispatch was interrupted%s.\n",
			colors.Red(), colors.Reset(), suffix)
	default:
		fmt.Fprintf(out, "Status: %sFailure%s. %v%s\n", colors.Red(), colors.Reset(), err, suffix)
	}
	return code
}
