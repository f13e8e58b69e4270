package tui

import "strings"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// SampleWindow keeps the most recent samples of a series in a fixed-size
// circular buffer.
type SampleWindow struct {
	buf  []float64
	next int
	n    int
}

// NewSampleWindow returns a window holding up to size samples (at least one).
func NewSampleWindow(size int) *SampleWindow {
	return &SampleWindow{buf: make([]float64, max(size, 1))}
}

// Add records v, evicting the oldest sample when the window is full.
func (w *SampleWindow) Add(v float64) {
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	w.n = min(w.n+1, len(w.buf))
}

// Len returns the number of samples held.
func (w *SampleWindow) Len() int { return w.n }

// Size returns the window capacity.
func (w *SampleWindow) Size() int { return len(w.buf) }

// Latest returns the newest sample, or 0 when the window is empty.
func (w *SampleWindow) Latest() float64 {
	if w.n == 0 {
		return 0
	}
	return w.buf[(w.next-1+len(w.buf))%len(w.buf)]
}

// Values returns the samples oldest first.
func (w *SampleWindow) Values() []float64 {
	out := make([]float64, 0, w.n)
	first := (w.next - w.n + len(w.buf)) % len(w.buf)
	for i := range w.n {
		out = append(out, w.buf[(first+i)%len(w.buf)])
	}
	return out
}

// SetSize changes the capacity and keeps the newest samples that fit.
func (w *SampleWindow) SetSize(size int) {
	size = max(size, 1)
	if size == len(w.buf) {
		return
	}
	vals := w.Values()
	if len(vals) > size {
		vals = vals[len(vals)-size:]
	}
	*w = SampleWindow{buf: make([]float64, size)}
	for _, v := range vals {
		w.Add(v)
	}
}

// Clear drops every sample.
func (w *SampleWindow) Clear() {
	w.next, w.n = 0, 0
}

// Sparkline renders percentages (0..100) as a row of block characters.
// Out-of-range values are clamped.
func Sparkline(values []float64) string {
	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		v = min(max(v, 0), 100)
		b.WriteRune(sparkBlocks[min(int(v/100*float64(top)), top)])
	}
	return b.String()
}
