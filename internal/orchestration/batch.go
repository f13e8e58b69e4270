package orchestration

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/mpicalc/internal/calc"
)

// Script is a named source text, typically a file.
type Script struct {
	Name   string
	Source string
}

// BatchResult is the outcome of one script of a batch.
type BatchResult struct {
	Script string
	EvaluationResult
}

// BatchOptions configures ExecuteBatch.
type BatchOptions struct {
	// Concurrency bounds the number of scripts evaluated at once. Zero means
	// GOMAXPROCS.
	Concurrency int
	// MaxDigits limits literal length (0 disables the limit).
	MaxDigits int
	// OnDone, if set, is called after each script finishes. It may be called
	// from several goroutines at once.
	OnDone func(BatchResult)
}

// ExecuteBatch evaluates independent scripts with backend, at most
// opts.Concurrency at a time. Results are returned in input order. Parse and
// evaluation errors are recorded per script; only cancellation of ctx stops
// the remaining scripts.
func ExecuteBatch(ctx context.Context, backend calc.Backend, scripts []Script, opts BatchOptions) []BatchResult {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]BatchResult, len(scripts))
	for i, s := range scripts {
		results[i] = BatchResult{Script: s.Name, EvaluationResult: EvaluationResult{Backend: backend.Name()}}
		g.Go(func() error {
			r := &results[i]
			if err := ctx.Err(); err != nil {
				r.Err = err
				return err
			}
			start := time.Now()
			prog, err := calc.ParseAndValidate(s.Source, opts.MaxDigits)
			if err != nil {
				r.Err, r.Duration = err, time.Since(start)
			} else {
				res, elapsed, err := calc.Evaluate(ctx, backend, prog, nil, nil)
				r.Err, r.Duration = err, elapsed
				if res != nil {
					r.Value, r.Assigned = res.Value, res.Assigned
				}
			}
			if opts.OnDone != nil {
				opts.OnDone(*r)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// BatchExitCode returns the exit code of the first failed script, or zero.
func BatchExitCode(results []BatchResult, exitCode func(error) int) int {
	for _, r := range results {
		if r.Err != nil {
			return exitCode(r.Err)
		}
	}
	return 0
}
