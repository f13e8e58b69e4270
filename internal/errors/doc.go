// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// evaluation, arithmetic contract violations, etc.) and for carrying the
// underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All error types implement the Unwrap() method where they carry a cause, so
// that errors.Is() and errors.As() work across the chain.
//
// Arithmetic contract violations (unsigned underflow, division by zero,
// malformed decimal input, oversized allocations) are raised by the mpi
// package as panics carrying an *ArithmeticError. RecoverArithmetic is the
// single place where such a panic is turned back into an ordinary error.
package apperrors
