package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/mpi"
)

// sparkWidth is the default number of samples drawn per sparkline.
const sparkWidth = 30

// MetricsModel shows runtime memory, host load and the size of the last
// result.
type MetricsModel struct {
	heapAlloc    uint64
	heapSys      uint64
	numGC        uint32
	numGoroutine int

	cpu *SampleWindow
	mem *SampleWindow

	lastBits     int
	lastDuration time.Duration
	evaluations  int

	width  int
	height int
}

// NewMetricsModel creates the metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		cpu: NewSampleWindow(sparkWidth),
		mem: NewSampleWindow(sparkWidth),
	}
}

// SetSize updates the panel dimensions and resizes the sparklines to fit.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if n := w - 20; n > 0 {
		m.cpu.SetSize(n)
		m.mem.SetSize(n)
	}
}

// UpdateMemStats records a runtime memory sample.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.heapAlloc = msg.HeapAlloc
	m.heapSys = msg.HeapSys
	m.numGC = msg.NumGC
	m.numGoroutine = msg.NumGoroutine
}

// UpdateSysStats records a host load sample.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) {
	m.cpu.Add(msg.CPUPercent)
	m.mem.Add(msg.MemPercent)
}

// RecordResult notes the size and duration of a finished evaluation.
func (m *MetricsModel) RecordResult(bits int, d time.Duration) {
	m.lastBits = bits
	m.lastDuration = d
	m.evaluations++
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	pipe := metricLabelStyle.Render(" | ")
	lines := []string{
		" " + metricLabelStyle.Render("Heap: ") +
			metricValueStyle.Render(format.FormatBytes(m.heapAlloc)+" / "+format.FormatBytes(m.heapSys)) +
			pipe + metricLabelStyle.Render("GC: ") + metricValueStyle.Render(fmt.Sprint(m.numGC)) +
			pipe + metricLabelStyle.Render("Goroutines: ") + metricValueStyle.Render(fmt.Sprint(m.numGoroutine)),
		metricRow("CPU", m.cpu, cpuSparklineStyle),
		metricRow("MEM", m.mem, memSparklineStyle),
	}
	if m.evaluations > 0 {
		lines = append(lines, " "+metricLabelStyle.Render("Last: ")+metricValueStyle.Render(fmt.Sprintf("%d bits, %d limbs in %s",
			m.lastBits, mpi.LimbsFor(m.lastBits), format.FormatExecutionDuration(m.lastDuration)))+
			pipe+metricLabelStyle.Render("Evaluations: ")+metricValueStyle.Render(fmt.Sprint(m.evaluations)))
	}

	style := panelStyle
	if m.width > 2 {
		style = style.Width(m.width - 2)
	}
	if m.height > 2 {
		style = style.Height(m.height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func metricRow(label string, w *SampleWindow, style lipgloss.Style) string {
	return fmt.Sprintf(" %s %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-4s", label)),
		metricValueStyle.Render(fmt.Sprintf("%5.1f%%", w.Latest())),
		style.Render(Sparkline(w.Values())))
}
