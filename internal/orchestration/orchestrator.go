package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/mpicalc/internal/calc"
	apperrors "github.com/agbru/mpicalc/internal/errors"
)

// ProgressBufferMultiplier sizes the progress channel per backend so that a
// slow display rarely blocks an evaluation.
const ProgressBufferMultiplier = 5

// ExecuteEvaluations runs prog on every backend concurrently, starting each
// from a copy of env, and returns one result per backend in input order.
// A failing backend does not cancel the others.
func ExecuteEvaluations(ctx context.Context, backends []calc.Backend, prog *calc.Program, env calc.Env, reporter ProgressReporter, out io.Writer) []EvaluationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]EvaluationResult, len(backends))
	progressChan := make(chan ProgressUpdate, len(backends)*ProgressBufferMultiplier)

	if reporter == nil {
		reporter = NullProgressReporter{}
	}
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(backends), out)

	for i, b := range backends {
		g.Go(func() error {
			report := func(done float64) {
				select {
				case progressChan <- ProgressUpdate{Index: i, Value: done}:
				case <-ctx.Done():
				}
			}
			res, elapsed, err := calc.Evaluate(ctx, b, prog, env.Clone(), report)
			results[i] = EvaluationResult{Backend: b.Name(), Duration: elapsed, Err: err}
			if res != nil {
				results[i].Value = res.Value
				results[i].Assigned = res.Assigned
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()
	return results
}

// SortResults orders results successes first, then by duration.
func SortResults(results []EvaluationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})
}

// Consistent reports whether every successful result carries the same value.
// Two nil values (empty programs) are equal.
func Consistent(results []EvaluationResult) bool {
	var ref *EvaluationResult
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if ref == nil {
			ref = r
			continue
		}
		if (r.Value == nil) != (ref.Value == nil) {
			return false
		}
		if r.Value != nil && r.Value.Cmp(ref.Value) != 0 {
			return false
		}
	}
	return true
}

// AnalyzeComparisonResults sorts results, prints the comparison table and a
// global status line, and returns the exit code: ExitErrorMismatch when the
// successful backends disagree, the error's exit code when none succeeded.
// Differing error kinds among failures are also reported as a mismatch.
func AnalyzeComparisonResults(results []EvaluationResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	SortResults(results)

	var firstValid *EvaluationResult
	var firstError error
	var failures []error
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
			failures = append(failures, results[i].Err)
		} else if firstValid == nil {
			firstValid = &results[i]
		}
	}

	if len(results) > 1 {
		presenter.PresentComparisonTable(results, out)
	}

	if firstValid == nil {
		if !sameKind(failures) {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! The backends failed in different ways.\n")
			return apperrors.ExitErrorMismatch
		}
		if len(results) > 1 {
			fmt.Fprintf(out, "\nGlobal Status: Failure. No backend could complete the evaluation.\n")
		}
		return errHandler.HandleError(firstError, 0, out)
	}

	if firstError != nil || !Consistent(results) {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the backends.\n")
		return apperrors.ExitErrorMismatch
	}

	if len(results) > 1 {
		fmt.Fprintf(out, "\nGlobal Status: Success. All results are consistent.\n")
	}
	presenter.PresentResult(*firstValid, opts, out)
	return apperrors.ExitSuccess
}

func sameKind(errs []error) bool {
	if len(errs) == 0 {
		return true
	}
	for _, err := range errs[1:] {
		if apperrors.KindOf(err) != apperrors.KindOf(errs[0]) {
			return false
		}
	}
	return true
}
