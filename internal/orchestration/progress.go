package orchestration

import (
	"time"

	"github.com/agbru/mpicalc/internal/format"
)

// ProgressAggregator combines the progress of several backends into one
// average with an ETA. The CLI spinner and the TUI both use it.
type ProgressAggregator struct {
	state       *format.ProgressWithETA
	numBackends int
}

// NewProgressAggregator returns an aggregator for n backends, or nil when
// n <= 0.
func NewProgressAggregator(n int) *ProgressAggregator {
	if n <= 0 {
		return nil
	}
	return &ProgressAggregator{state: format.NewProgressWithETA(n), numBackends: n}
}

// AggregatedProgress is the state after one update.
type AggregatedProgress struct {
	Index           int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update applies one update and returns the new aggregate.
func (a *ProgressAggregator) Update(u ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(u.Index, u.Value)
	return AggregatedProgress{Index: u.Index, Value: u.Value, AverageProgress: avg, ETA: eta}
}

// CalculateAverage returns the current average without updating.
func (a *ProgressAggregator) CalculateAverage() float64 { return a.state.CalculateAverage() }

// GetETA returns the current estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration { return a.state.GetETA() }

// NumBackends returns the number of tracked backends.
func (a *ProgressAggregator) NumBackends() int { return a.numBackends }

// IsMulti reports whether more than one backend is tracked.
func (a *ProgressAggregator) IsMulti() bool { return a.numBackends > 1 }

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
