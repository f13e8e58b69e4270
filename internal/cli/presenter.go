package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/metrics"
	"github.com/agbru/mpicalc/internal/orchestration"
	"github.com/agbru/mpicalc/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with the
// spinner and progress bar of DisplayProgress.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing evaluations.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numBackends int, out io.Writer) {
	DisplayProgress(wg, progressChan, numBackends, out)
}

// CLIColorProvider feeds the active ui theme to apperrors.
type CLIColorProvider struct{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
// It provides formatted, colorized output for evaluation results in the
// command-line interface.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// PresentComparisonTable displays one row per backend with its duration,
// result size and status. Padding is computed on the raw text so that ANSI
// color codes do not break the alignment.
func (p CLIResultPresenter) PresentComparisonTable(results []orchestration.EvaluationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	const (
		backendHdr  = "Backend"
		durationHdr = "Duration"
		bitsHdr     = "Bits"
	)
	nameW, durW, bitsW := len(backendHdr), len(durationHdr), len(bitsHdr)
	durations := make([]string, len(results))
	bits := make([]string, len(results))
	for i, res := range results {
		nameW = max(nameW, len(res.Backend))
		durations[i] = p.FormatDuration(res.Duration)
		durW = max(durW, len([]rune(durations[i])))
		bits[i] = "-"
		if res.Err == nil && res.Value != nil {
			bits[i] = format.FormatNumberString(fmt.Sprint(res.Value.BitLen()))
		}
		bitsW = max(bitsW, len(bits[i]))
	}

	header := func(s string, w int) string {
		return ui.ColorUnderline() + s + ui.ColorReset() + padRight("", w-len(s))
	}
	fmt.Fprintf(out, "%s   %s   %s   %sStatus%s\n",
		header(backendHdr, nameW), header(durationHdr, durW), header(bitsHdr, bitsW),
		ui.ColorUnderline(), ui.ColorReset())

	for i, res := range results {
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%s)%s", ui.ColorRed(), apperrors.KindOf(res.Err), ui.ColorReset())
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s%s   %s\n",
			ui.ColorBlue(), res.Backend, ui.ColorReset(), padRight("", nameW-len(res.Backend)),
			ui.ColorYellow(), durations[i], ui.ColorReset(), padRight("", durW-len([]rune(durations[i]))),
			padRight("", bitsW-len(bits[i])), bits[i],
			status)
	}
}

// padRight appends length spaces to s.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult displays the agreed value with DisplayResult.
func (CLIResultPresenter) PresentResult(result orchestration.EvaluationResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts, out)
}

// FormatDuration formats a duration for display. Zero reads "< 1µs".
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// HandleError handles evaluation errors and returns an appropriate exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// DisplayMemoryStats shows the allocation cost of an evaluation.
func DisplayMemoryStats(d metrics.MemoryDelta, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", format.FormatBytes(d.PeakHeap))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(d.Allocated))
	fmt.Fprintf(out, "  Allocations:     %s\n", format.FormatNumberString(fmt.Sprint(d.Allocs)))
	fmt.Fprintf(out, "  GC cycles:       %d\n", d.GCCycles)
}
