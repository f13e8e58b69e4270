package cli

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/golang/mock/gomock"

	"github.com/agbru/mpicalc/internal/cli/mocks"
	"github.com/agbru/mpicalc/internal/orchestration"
)

// withSpinner replaces newSpinner for the duration of the test. Tests that
// call it must not be parallel.
func withSpinner(t *testing.T, s Spinner) {
	t.Helper()
	original := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return s }
	t.Cleanup(func() { newSpinner = original })
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("Suffix = %q, want %q", s.Suffix, " test")
	}
}

func TestDisplayProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)
	gomock.InOrder(
		mockS.EXPECT().UpdateSuffix(" Evaluating on 2 backends"),
		mockS.EXPECT().Start(),
	)
	var suffixes []string
	mockS.EXPECT().UpdateSuffix(gomock.Any()).Do(func(s string) { suffixes = append(suffixes, s) }).AnyTimes()
	mockS.EXPECT().Stop()
	withSpinner(t, mockS)

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate)
	go func() {
		progressChan <- orchestration.ProgressUpdate{Index: 0, Value: 0.5}
		progressChan <- orchestration.ProgressUpdate{Index: 1, Value: 0.5}
		time.Sleep(3 * ProgressRefreshRate / 2)
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 2, io.Discard)
	wg.Wait()

	if len(suffixes) == 0 {
		t.Fatal("expected at least one progress refresh")
	}
	if last := suffixes[len(suffixes)-1]; !strings.Contains(last, "50.0%") {
		t.Errorf("progress suffix should show the average, got %q", last)
	}
}

func TestDisplayProgress_ZeroBackends(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No calls expected: the spinner must not be created.
	withSpinner(t, mocks.NewMockSpinner(ctrl))

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate, 1)
	progressChan <- orchestration.ProgressUpdate{Value: 1}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}

func TestCLIProgressReporter(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)
	mockS.EXPECT().UpdateSuffix(gomock.Any()).AnyTimes()
	mockS.EXPECT().Start()
	mockS.EXPECT().Stop()
	withSpinner(t, mockS)

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate)
	close(progressChan)
	CLIProgressReporter{}.DisplayProgress(&wg, progressChan, 1, io.Discard)
	wg.Wait()
}
