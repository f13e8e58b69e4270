package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Kinds of arithmetic contract violations. They are matched with errors.Is
// against an *ArithmeticError.
var (
	ErrUnderflow       = errors.New("negative numbers not supported")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrSyntax          = errors.New("invalid decimal digit")
	ErrUnsupportedBase = errors.New("unsupported base")
	ErrAllocation      = errors.New("out of memory")
)

// Kinds of expression errors reported by the calculator front end.
var (
	ErrParse     = errors.New("parse error")
	ErrUndefined = errors.New("undefined name")
	ErrLimit     = errors.New("limit exceeded")
)

// ArithmeticError reports a violated precondition of a multi-precision
// operation. The mpi package panics with a value of this type.
type ArithmeticError struct {
	// Op is the name of the operation that detected the violation.
	Op string
	// Kind is one of the Err* sentinels above.
	Kind error
	// Detail optionally carries extra context (offending input, sizes).
	Detail error
}

// Error returns "op: kind" and appends the detail when present.
func (e *ArithmeticError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the detail to errors.Is and errors.As.
func (e *ArithmeticError) Unwrap() []error {
	if e.Detail != nil {
		return []error{e.Kind, e.Detail}
	}
	return []error{e.Kind}
}

// NewArithmeticError builds an *ArithmeticError for op.
func NewArithmeticError(op string, kind error) *ArithmeticError {
	return &ArithmeticError{Op: op, Kind: kind}
}

// RecoverArithmetic converts a panic carrying an *ArithmeticError into an
// error stored in *errp. Any other panic value is re-raised. It must be
// called directly by a deferred statement:
//
//	defer apperrors.RecoverArithmetic(&err)
func RecoverArithmetic(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ae, ok := r.(*ArithmeticError); ok {
		*errp = ae
		return
	}
	panic(r)
}

// IsArithmeticError reports whether err carries an *ArithmeticError.
func IsArithmeticError(err error) bool {
	var ae *ArithmeticError
	return errors.As(err, &ae)
}

// KindOf returns a short stable label for the error class, suitable for
// metric labels and log fields.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnderflow):
		return "underflow"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrSyntax):
		return "syntax"
	case errors.Is(err, ErrUnsupportedBase):
		return "base"
	case errors.Is(err, ErrAllocation):
		return "allocation"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrUndefined):
		return "undefined"
	case errors.Is(err, ErrLimit):
		return "limit"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	var ce ConfigError
	if errors.As(err, &ce) {
		return "config"
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return "validation"
	}
	return "other"
}
