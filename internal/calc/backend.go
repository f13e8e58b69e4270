package calc

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_backend.go -package=mocks github.com/agbru/mpicalc/internal/calc Backend

// Backend evaluates programs with one arithmetic implementation.
type Backend interface {
	// Name is the short identifier used on the command line.
	Name() string
	// Description is a human readable summary.
	Description() string
	// Eval evaluates prog starting from the bindings in env. env is not
	// modified.
	Eval(ctx context.Context, prog *Program, env Env, progress ProgressCallback) (*Result, error)
}

// engine adapts a numeric implementation to the Backend interface.
type engine[T any] struct {
	name string
	desc string
	ops  numeric[T]
}

func (e *engine[T]) Name() string        { return e.name }
func (e *engine[T]) Description() string { return e.desc }

func (e *engine[T]) Eval(ctx context.Context, prog *Program, env Env, progress ProgressCallback) (*Result, error) {
	return run(ctx, e.ops, prog, env, progress)
}
