package orchestration

import (
	"io"
	"math/big"
	"sync"
	"time"
)

// EvaluationResult is the outcome of running a program on a single backend.
// It is the domain type shared by orchestration and presentation.
type EvaluationResult struct {
	// Backend is the name of the backend that produced the result.
	Backend string
	// Value is the value of the last statement. It is nil on error or for an
	// empty program.
	Value *big.Int
	// Assigned lists the variables the program assigned.
	Assigned []string
	// Duration is the wall time of the evaluation.
	Duration time.Duration
	// Err holds the evaluation error, if any.
	Err error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	Verbose   bool
	Details   bool
	ShowValue bool
	Hex       bool
}

// ProgressUpdate is a progress report from one backend.
type ProgressUpdate struct {
	// Index identifies the backend in the slice passed to ExecuteEvaluations.
	Index int
	// Value is the fraction of statements evaluated, in [0, 1].
	Value float64
}

// ProgressReporter displays progress while evaluations run. It decouples
// orchestration from spinners and progress bars.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done. It runs in its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numBackends int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numBackends int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numBackends int, out io.Writer) {
	f(wg, progressChan, numBackends, out)
}

// NullProgressReporter drains the progress channel without output. It is
// used in quiet mode and in tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders evaluation results.
type ResultPresenter interface {
	// PresentComparisonTable displays one row per backend.
	PresentComparisonTable(results []EvaluationResult, out io.Writer)
	// PresentResult displays the agreed value.
	PresentResult(result EvaluationResult, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler prints an evaluation error and returns the exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
