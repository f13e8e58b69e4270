package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when printing errors.
// It keeps this package independent from the ui package.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type noColors struct{}

func (noColors) Red() string    { return "" }
func (noColors) Yellow() string { return "" }
func (noColors) Reset() string  { return "" }

// ExitCodeFor maps an error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var te TimeoutError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &te):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case IsArithmeticError(err):
		return ExitErrorArithmetic
	}
	var ce ConfigError
	if errors.As(err, &ce) {
		return ExitErrorConfig
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ExitErrorConfig
	}
	return ExitErrorGeneric
}

// HandleCalculationError prints a one-line diagnostic for err and returns the
// matching exit code. A nil err prints nothing and returns ExitSuccess.
//
// Parameters:
//   - err: The error returned by an evaluation.
//   - duration: How long the evaluation ran before failing (0 if unknown).
//   - out: Destination for the diagnostic.
//   - colors: Escape sequences; nil disables colors.
//
// Returns:
//   - int: The exit code for err.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = noColors{}
	}
	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The evaluation did not finish in time", colors.Red())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled by user", colors.Yellow())
	case ExitErrorArithmetic:
		fmt.Fprintf(out, "%sStatus: Arithmetic error. %v", colors.Red(), err)
	default:
		fmt.Fprintf(out, "%sStatus: Failure. %v", colors.Red(), err)
	}
	if duration > 0 {
		fmt.Fprintf(out, " (after %s)", duration)
	}
	fmt.Fprintf(out, "%s\n", colors.Reset())
	return code
}
