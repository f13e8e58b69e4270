//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// It lets DisplayProgress and the REPL run against a fake in tests.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }

// UpdateSuffix sets the suffix under the spinner lock, since the animation
// goroutine reads it concurrently.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Same interval as ProgressRefreshRate so frames and bar updates line up.
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with an aggregated progress bar until
// progressChan is closed, then calls wg.Done. With several backends the bar
// shows their average.
//
// Parameters:
//   - wg: Signalled when the display has stopped.
//   - progressChan: Updates from the running evaluations.
//   - numBackends: Number of evaluations reporting on progressChan.
//   - out: Destination of the spinner.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numBackends int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numBackends)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	label := "Evaluating"
	if agg.IsMulti() {
		label = fmt.Sprintf("Evaluating on %d backends", agg.NumBackends())
	}
	s := newSpinner(spinner.WithWriter(out), spinner.WithHiddenCursor(true))
	s.UpdateSuffix(" " + label)
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	var last orchestration.AggregatedProgress
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				return
			}
			last = agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s %s", label,
				format.FormatProgressBarWithETA(last.AverageProgress, last.ETA, ProgressBarWidth)))
		}
	}
}
