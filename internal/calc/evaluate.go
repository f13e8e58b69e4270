package calc

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

var tracer = otel.Tracer("github.com/agbru/mpicalc/internal/calc")

// Evaluate runs prog on backend inside a trace span. Errors are wrapped in
// an apperrors.CalculationError naming the backend.
func Evaluate(ctx context.Context, backend Backend, prog *Program, env Env, progress ProgressCallback) (*Result, time.Duration, error) {
	ctx, span := tracer.Start(ctx, "calc.Evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.String("calc.backend", backend.Name()),
		attribute.Int("calc.statements", len(prog.Stmts)),
	)

	start := time.Now()
	res, err := backend.Eval(ctx, prog, env, progress)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.KindOf(err))
		return nil, elapsed, apperrors.CalculationError{Backend: backend.Name(), Cause: err}
	}
	if res.Value != nil {
		span.SetAttributes(attribute.Int("calc.result_bits", res.Value.BitLen()))
	}
	return res, elapsed, nil
}

// ParseAndValidate parses src and applies the literal size limit.
func ParseAndValidate(src string, maxDigits int) (*Program, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if err := prog.Validate(maxDigits); err != nil {
		return nil, err
	}
	return prog, nil
}
