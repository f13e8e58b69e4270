package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxETA caps estimates so a stalled task does not print absurd values.
const maxETA = 24 * time.Hour

// etaSmoothing is the weight of the newest sample in the rate average.
const etaSmoothing = 0.3

// ProgressState tracks the completion fraction of a fixed set of tasks.
type ProgressState struct {
	mu         sync.Mutex
	progresses []float64
	numTasks   int
}

// NewProgressState returns a state for n tasks, all at zero.
func NewProgressState(n int) *ProgressState {
	if n < 0 {
		n = 0
	}
	return &ProgressState{progresses: make([]float64, n), numTasks: n}
}

// Update records the progress of task i. Values are clamped to [0, 1] and
// out of range indexes are ignored.
func (s *ProgressState) Update(i int, v float64) {
	if i < 0 || i >= s.numTasks {
		return
	}
	s.mu.Lock()
	s.progresses[i] = clamp01(v)
	s.mu.Unlock()
}

// CalculateAverage returns the mean progress over all tasks.
func (s *ProgressState) CalculateAverage() float64 {
	if s.numTasks == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, p := range s.progresses {
		sum += p
	}
	return sum / float64(s.numTasks)
}

// ProgressWithETA extends ProgressState with a smoothed completion rate.
type ProgressWithETA struct {
	*ProgressState
	numTasks     int
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // fraction per second
}

// NewProgressWithETA returns a tracker for n tasks starting now.
func NewProgressWithETA(n int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(n),
		numTasks:      n,
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records an update and returns the new average and the
// estimated time remaining.
func (p *ProgressWithETA) UpdateWithETA(i int, v float64) (float64, time.Duration) {
	p.Update(i, v)
	avg := p.CalculateAverage()

	now := time.Now()
	if dt := now.Sub(p.lastUpdate).Seconds(); dt > 0 && avg > p.lastProgress {
		rate := (avg - p.lastProgress) / dt
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = etaSmoothing*rate + (1-etaSmoothing)*p.progressRate
		}
		p.lastUpdate = now
		p.lastProgress = avg
	}
	return avg, p.GetETA()
}

// GetETA returns the current estimate, or 0 while the rate is unknown.
func (p *ProgressWithETA) GetETA() time.Duration {
	if p.progressRate <= 0 {
		return 0
	}
	remaining := 1 - p.CalculateAverage()
	if remaining <= 0 {
		return 0
	}
	secs := remaining / p.progressRate
	if secs > maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(secs * float64(time.Second))
}

// FormatETA renders an estimate as "45s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h, m := int(eta.Hours()), int(eta.Minutes())%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// ProgressBar renders a bar of length cells filled to progress.
func ProgressBar(progress float64, length int) string {
	if length <= 0 {
		return ""
	}
	filled := int(clamp01(progress) * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar]  42.0% ETA: 5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), clamp01(progress)*100, FormatETA(eta))
}

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 1)
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// TruncateDigits shortens a long decimal string to its first and last n
// digits, as "123...789 (1,000 digits)".
func TruncateDigits(s string, n int) string {
	if n <= 0 || len(s) <= 2*n {
		return s
	}
	return fmt.Sprintf("%s...%s (%s digits)", s[:n], s[len(s)-n:], FormatNumberString(fmt.Sprint(len(s))))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
