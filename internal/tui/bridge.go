package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/mpicalc/internal/calc"
	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/orchestration"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send delivers msg to the program if one is attached.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// TUIProgressReporter forwards orchestration progress to the program as
// ProgressMsg values tagged with the generation of the running request.
type TUIProgressReporter struct {
	ref        *programRef
	generation uint64
}

var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress consumes updates until the channel is closed.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numBackends int, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(numBackends)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}
	for update := range progressChan {
		ap := agg.Update(update)
		t.ref.Send(ProgressMsg{Generation: t.generation, AverageProgress: ap.AverageProgress, ETA: ap.ETA})
	}
}

// TUIResultPresenter collects what AnalyzeComparisonResults presents so the
// model can render it in the transcript.
type TUIResultPresenter struct {
	rows  []string
	final *orchestration.EvaluationResult
	err   error
}

var (
	_ orchestration.ResultPresenter   = (*TUIResultPresenter)(nil)
	_ orchestration.DurationFormatter = (*TUIResultPresenter)(nil)
	_ orchestration.ErrorHandler      = (*TUIResultPresenter)(nil)
)

// PresentComparisonTable records one row per backend.
func (t *TUIResultPresenter) PresentComparisonTable(results []orchestration.EvaluationResult, _ io.Writer) {
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed (" + apperrors.KindOf(r.Err) + ")"
		} else if r.Value != nil {
			status = fmt.Sprintf("%d bits", r.Value.BitLen())
		}
		t.rows = append(t.rows, fmt.Sprintf("%-6s %10s  %s", r.Backend, t.FormatDuration(r.Duration), status))
	}
}

// PresentResult records the agreed result.
func (t *TUIResultPresenter) PresentResult(result orchestration.EvaluationResult, _ orchestration.PresentationOptions, _ io.Writer) {
	t.final = &result
}

// FormatDuration delegates to the CLI formatter.
func (t *TUIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError records err and returns its exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	t.err = err
	return apperrors.HandleCalculationError(err, duration, io.Discard, nil)
}

// evalCmd evaluates src on backend within the session. Progress is sent
// through ref while the command runs.
func evalCmd(ctx context.Context, ref *programRef, session *calc.Session, backend calc.Backend, src string, timeout time.Duration, gen uint64) tea.Cmd {
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		progress := func(done float64) {
			ref.Send(ProgressMsg{Generation: gen, AverageProgress: done})
		}
		entry := HistoryEntry{Input: src, Backend: backend.Name()}
		res, elapsed, err := session.EvalProgress(ctx, backend, src, progress)
		entry.Duration = elapsed
		entry.Err = apperrors.AsTimeout(err, "eval", timeout)
		if res != nil {
			entry.Value = res.Value
		}
		return EvalResultMsg{Generation: gen, Entry: entry}
	}
}

// compareCmd runs src on every backend against a snapshot of the session
// variables. Nothing is committed to the session.
func compareCmd(ctx context.Context, ref *programRef, session *calc.Session, backends []calc.Backend, src string, maxDigits int, timeout time.Duration, gen uint64) tea.Cmd {
	return func() tea.Msg {
		msg := CompareResultMsg{Generation: gen, Input: src}
		prog, err := calc.ParseAndValidate(src, maxDigits)
		if err != nil {
			msg.Results = []orchestration.EvaluationResult{{Backend: "all", Err: err}}
			msg.ExitCode = apperrors.ExitCodeFor(err)
			return msg
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		reporter := &TUIProgressReporter{ref: ref, generation: gen}
		msg.Results = orchestration.ExecuteEvaluations(ctx, backends, prog, session.Env(), reporter, io.Discard)
		presenter := &TUIResultPresenter{}
		msg.ExitCode = orchestration.AnalyzeComparisonResults(msg.Results, orchestration.PresentationOptions{}, presenter, presenter, io.Discard)
		return msg
	}
}

var errMismatch = errors.New("backends disagree")

// compareEntry turns a comparison into a transcript entry.
func compareEntry(msg CompareResultMsg) HistoryEntry {
	p := &TUIResultPresenter{}
	p.PresentComparisonTable(msg.Results, io.Discard)
	entry := HistoryEntry{Input: msg.Input, Backend: "all", Details: p.rows}
	switch msg.ExitCode {
	case apperrors.ExitSuccess:
		for _, r := range msg.Results {
			if r.Err == nil {
				entry.Value = r.Value
				entry.Duration = r.Duration
				break
			}
		}
		entry.Details = append(entry.Details, fmt.Sprintf("consistent across %d backends", len(msg.Results)))
	case apperrors.ExitErrorMismatch:
		entry.Err = errMismatch
	default:
		for _, r := range msg.Results {
			if r.Err != nil {
				entry.Err = r.Err
				break
			}
		}
	}
	return entry
}
