package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpicalc/internal/ui"
)

// Style variables for the terminal UI.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle         lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	dimStyle           lipgloss.Style
	backendStyle       lipgloss.Style
	promptStyle        lipgloss.Style
	inputEchoStyle     lipgloss.Style
	valueStyle         lipgloss.Style
	successStyle       lipgloss.Style
	errorStyle         lipgloss.Style
	metricLabelStyle   lipgloss.Style
	metricValueStyle   lipgloss.Style
	progressBarStyle   lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusIdleStyle    lipgloss.Style
	cpuSparklineStyle  lipgloss.Style
	memSparklineStyle  lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	dimStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	backendStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	promptStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	inputEchoStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	valueStyle = lipgloss.NewStyle().
		Foreground(t.Value)

	successStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Error)

	metricLabelStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricValueStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	progressBarStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	statusRunningStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	statusIdleStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	cpuSparklineStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	memSparklineStyle = lipgloss.NewStyle().
		Foreground(t.Warning)
}
