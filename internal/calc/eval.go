package calc

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

// MaxShift bounds the shift amount of << and the index of setbit, so a
// short script cannot ask for gigabytes of limbs.
const MaxShift = 1 << 24

// Env holds variable bindings as math/big values, the representation shared
// by all backends.
type Env map[string]*big.Int

// Clone returns a shallow copy of env. Values are never mutated in place, so
// sharing them is safe.
func (env Env) Clone() Env {
	out := make(Env, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

// Result is the outcome of evaluating a Program.
type Result struct {
	// Value is the value of the last statement, or nil for an empty program.
	Value *big.Int
	// Vars holds the input bindings plus every assignment made.
	Vars Env
	// Assigned lists the names assigned, in order, without duplicates.
	Assigned []string
}

// ProgressCallback receives the fraction of statements evaluated so far.
type ProgressCallback func(done float64)

// EvalError is an evaluation failure tied to a source position.
type EvalError struct {
	Pos Position
	Err error
}

func (e *EvalError) Error() string { return fmt.Sprintf("%s: %v", e.Pos, e.Err) }

func (e *EvalError) Unwrap() error { return e.Err }

// numeric is the arithmetic a backend supplies to the shared evaluator.
// Operations must not modify their operands. Contract violations panic with
// an *apperrors.ArithmeticError. The superlinear operations take the
// evaluation context and return its error when they stop early.
type numeric[T any] interface {
	parse(lit string) (T, error)
	fromBig(*big.Int) (T, error)
	toBig(T) *big.Int
	fromUint64(uint64) T
	toUint64(T) (uint64, bool)
	add(x, y T) T
	sub(x, y T) T
	mul(ctx context.Context, x, y T) (T, error)
	divmod(ctx context.Context, x, y T) (T, T, error)
	lsh(x T, s uint) T
	rsh(x T, s uint) T
	modpow2(x T, s uint) T
	gcd(ctx context.Context, x, y T) (T, error)
	bitlen(x T) int
	bit(x T, i uint) uint
	setbit(x T, i uint) T
	cmp(x, y T) int
}

type walker[T any] struct {
	ctx  context.Context
	ops  numeric[T]
	vars map[string]T
	pos  Position
}

// run evaluates prog with ops. Arithmetic panics raised by ops are turned
// into an *EvalError carrying the position of the failing node.
func run[T any](ctx context.Context, ops numeric[T], prog *Program, env Env, progress ProgressCallback) (res *Result, err error) {
	w := &walker[T]{ctx: ctx, ops: ops, vars: make(map[string]T, len(env))}
	defer func() {
		if err == nil {
			return
		}
		res = nil
		var ee *EvalError
		if apperrors.IsArithmeticError(err) && !errors.As(err, &ee) {
			err = &EvalError{Pos: w.pos, Err: err}
		}
	}()
	defer apperrors.RecoverArithmetic(&err)

	for name, v := range env {
		t, err := ops.fromBig(v)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		w.vars[name] = t
	}

	res = &Result{Vars: env.Clone()}
	var last T
	seen := make(map[string]bool)
	for i, stmt := range prog.Stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := w.eval(stmt.X)
		if err != nil {
			return nil, err
		}
		if stmt.Name != "" {
			w.vars[stmt.Name] = v
			res.Vars[stmt.Name] = ops.toBig(v)
			if !seen[stmt.Name] {
				seen[stmt.Name] = true
				res.Assigned = append(res.Assigned, stmt.Name)
			}
		}
		last = v
		if progress != nil {
			progress(float64(i+1) / float64(len(prog.Stmts)))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(prog.Stmts) > 0 {
		res.Value = ops.toBig(last)
	}
	return res, nil
}

func (w *walker[T]) eval(e Expr) (T, error) {
	var zero T
	if err := w.ctx.Err(); err != nil {
		return zero, err
	}
	switch n := e.(type) {
	case *NumberLit:
		w.pos = n.Pos
		v, err := w.ops.parse(n.Text)
		if err != nil {
			return zero, &EvalError{Pos: n.Pos, Err: err}
		}
		return v, nil
	case *Ident:
		v, ok := w.vars[n.Name]
		if !ok {
			return zero, &EvalError{Pos: n.Pos, Err: fmt.Errorf("%w: %s", apperrors.ErrUndefined, n.Name)}
		}
		return v, nil
	case *BinaryExpr:
		x, err := w.eval(n.X)
		if err != nil {
			return zero, err
		}
		y, err := w.eval(n.Y)
		if err != nil {
			return zero, err
		}
		w.pos = n.Pos
		return w.binary(n, x, y)
	case *CallExpr:
		args := make([]T, len(n.Args))
		for i, a := range n.Args {
			v, err := w.eval(a)
			if err != nil {
				return zero, err
			}
			args[i] = v
		}
		w.pos = n.Pos
		return w.call(n, args)
	}
	return zero, &EvalError{Pos: e.Position(), Err: fmt.Errorf("unsupported expression %T", e)}
}

func (w *walker[T]) binary(n *BinaryExpr, x, y T) (T, error) {
	var zero T
	switch n.Op {
	case "+":
		return w.ops.add(x, y), nil
	case "-":
		return w.ops.sub(x, y), nil
	case "*":
		return w.ops.mul(w.ctx, x, y)
	case "/":
		q, _, err := w.ops.divmod(w.ctx, x, y)
		return q, err
	case "%":
		_, r, err := w.ops.divmod(w.ctx, x, y)
		return r, err
	case "<<":
		s, err := w.bounded(n.Pos, y)
		if err != nil {
			return zero, err
		}
		return w.ops.lsh(x, s), nil
	case ">>":
		s, ok := w.amount(y)
		if !ok {
			return w.ops.fromUint64(0), nil
		}
		return w.ops.rsh(x, s), nil
	}
	return zero, &EvalError{Pos: n.Pos, Err: fmt.Errorf("unknown operator %q", n.Op)}
}

func (w *walker[T]) call(n *CallExpr, args []T) (T, error) {
	var zero T
	switch n.Func {
	case "gcd":
		return w.ops.gcd(w.ctx, args[0], args[1])
	case "bitlen":
		return w.ops.fromUint64(uint64(w.ops.bitlen(args[0]))), nil
	case "bit":
		i, ok := w.amount(args[1])
		if !ok {
			return w.ops.fromUint64(0), nil
		}
		return w.ops.fromUint64(uint64(w.ops.bit(args[0], i))), nil
	case "setbit":
		i, err := w.bounded(n.Pos, args[1])
		if err != nil {
			return zero, err
		}
		return w.ops.setbit(args[0], i), nil
	case "modpow2":
		k, ok := w.amount(args[1])
		if !ok {
			return args[0], nil
		}
		return w.ops.modpow2(args[0], k), nil
	case "min":
		if w.ops.cmp(args[0], args[1]) <= 0 {
			return args[0], nil
		}
		return args[1], nil
	case "max":
		if w.ops.cmp(args[0], args[1]) >= 0 {
			return args[0], nil
		}
		return args[1], nil
	}
	return zero, &EvalError{Pos: n.Pos, Err: fmt.Errorf("%w: function %s", apperrors.ErrUndefined, n.Func)}
}

// amount converts v to a bit count. ok is false when v does not fit in a
// uint, in which case every bit of any representable value is below it.
func (w *walker[T]) amount(v T) (uint, bool) {
	n, ok := w.ops.toUint64(v)
	if !ok || n > uint64(^uint(0)) {
		return 0, false
	}
	return uint(n), true
}

// bounded is amount with the MaxShift limit applied.
func (w *walker[T]) bounded(pos Position, v T) (uint, error) {
	n, ok := w.amount(v)
	if !ok || n > MaxShift {
		return 0, &EvalError{Pos: pos, Err: fmt.Errorf("%w: shift or bit index above %d", apperrors.ErrLimit, MaxShift)}
	}
	return n, nil
}
