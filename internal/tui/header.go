package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpicalc/internal/format"
)

// HeaderModel renders the top bar: title, version, backend and session age.
type HeaderModel struct {
	startTime time.Time
	version   string
	backend   string
	running   bool
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version, backend string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		backend:   backend,
	}
}

// SetBackend changes the backend shown.
func (h *HeaderModel) SetBackend(name string) { h.backend = name }

// SetRunning switches the status indicator.
func (h *HeaderModel) SetRunning(running bool) { h.running = running }

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) { h.width = w }

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "mpicalc"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")

	status := statusIdleStyle.Render("ready")
	if h.running {
		status = statusRunningStyle.Render("evaluating")
	}
	left := titleStyle.Render(titleText) + pipe +
		dimStyle.Render("backend: ") + backendStyle.Render(h.backend) + pipe + status

	right := dimStyle.Render(fmt.Sprintf("session %s", format.FormatExecutionDuration(time.Since(h.startTime).Truncate(time.Second))))

	gap := h.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Width(h.width).Render(left + spaces(gap) + right)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
