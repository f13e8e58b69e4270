package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Process exit codes.
const (
	ExitSuccess         = 0
	ExitErrorGeneric    = 1
	ExitErrorTimeout    = 2
	ExitErrorMismatch   = 3 // backends returned different values
	ExitErrorConfig     = 4
	ExitErrorArithmetic = 5 // a multi-precision precondition was violated
	ExitErrorCanceled   = 130
)

// ConfigError reports an invalid flag, environment value or request field
// combination. The program stops before evaluating anything.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError returns a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError is returned by calc.Evaluate. Backend names the
// implementation that failed so comparison reports can tell them apart.
type CalculationError struct {
	Backend string
	Cause   error
}

func (e CalculationError) Error() string {
	if e.Backend == "" {
		return e.Cause.Error()
	}
	return e.Backend + ": " + e.Cause.Error()
}

func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError replaces a bare deadline error once the limit is known. It
// still matches context.DeadlineExceeded.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

func (e TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// ValidationError reports a rejected input field, such as an oversized
// literal or an empty request body.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// MemoryError reports a limb allocation beyond the supported size. Requested
// and Limit count limbs.
type MemoryError struct {
	Requested uint64
	Available uint64
	Limit     uint64
}

func (e MemoryError) Error() string {
	return fmt.Sprintf("memory error: requested %d words, available %d words (limit: %d)", e.Requested, e.Available, e.Limit)
}

// WrapError prefixes err with a formatted message, keeping it in the chain.
// A nil err stays nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from cancellation or a deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// AsTimeout rewrites a deadline error as a TimeoutError carrying limit,
// keeping any CalculationError around it. Other errors are returned as is.
func AsTimeout(err error, operation string, limit time.Duration) error {
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var te TimeoutError
	if errors.As(err, &te) {
		return err
	}
	timeout := TimeoutError{Operation: operation, Limit: limit}
	var ce CalculationError
	if errors.As(err, &ce) {
		return CalculationError{Backend: ce.Backend, Cause: timeout}
	}
	return timeout
}
