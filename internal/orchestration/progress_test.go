package orchestration

import (
	"testing"
	"time"
)

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		backends  int
		wantNil   bool
		wantMulti bool
	}{
		{-1, true, false},
		{0, true, false},
		{1, false, false},
		{3, false, true},
	}
	for _, tt := range tests {
		agg := NewProgressAggregator(tt.backends)
		if (agg == nil) != tt.wantNil {
			t.Errorf("NewProgressAggregator(%d) nil = %v, want %v", tt.backends, agg == nil, tt.wantNil)
			continue
		}
		if agg == nil {
			continue
		}
		if agg.NumBackends() != tt.backends || agg.IsMulti() != tt.wantMulti {
			t.Errorf("NewProgressAggregator(%d): NumBackends %d, IsMulti %v", tt.backends, agg.NumBackends(), agg.IsMulti())
		}
	}
}

func TestProgressAggregatorStatements(t *testing.T) {
	t.Parallel()
	// Two backends running a four statement script.
	agg := NewProgressAggregator(2)
	if agg.CalculateAverage() != 0 || agg.GetETA() != 0 {
		t.Fatal("fresh aggregator should report nothing")
	}

	steps := []struct {
		update ProgressUpdate
		want   float64
	}{
		{ProgressUpdate{Index: 0, Value: 0.25}, 0.125},
		{ProgressUpdate{Index: 1, Value: 0.5}, 0.375},
		{ProgressUpdate{Index: 0, Value: 1}, 0.75},
		{ProgressUpdate{Index: 1, Value: 1}, 1},
	}
	for i, s := range steps {
		if i > 0 {
			time.Sleep(time.Millisecond)
		}
		got := agg.Update(s.update)
		if got.Index != s.update.Index || got.Value != s.update.Value {
			t.Errorf("step %d echoed %+v", i, got)
		}
		if got.AverageProgress != s.want {
			t.Errorf("step %d: average = %v, want %v", i, got.AverageProgress, s.want)
		}
		if got.ETA < 0 {
			t.Errorf("step %d: negative ETA %v", i, got.ETA)
		}
	}
	if agg.GetETA() != 0 {
		t.Errorf("ETA after completion = %v, want 0", agg.GetETA())
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 3} {
		ch := make(chan ProgressUpdate, n)
		for i := range n {
			ch <- ProgressUpdate{Value: float64(i+1) / float64(n)}
		}
		close(ch)
		DrainChannel(ch)
		if len(ch) != 0 {
			t.Errorf("%d updates left in the channel", len(ch))
		}
	}
}
