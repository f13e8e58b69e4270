package ui

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a set of ANSI escape sequences, one per role.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Value     string
	Bold      string
	Underline string
	Reset     string
}

// TUITheme holds lipgloss colors for the terminal UI.
type TUITheme struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Value   lipgloss.TerminalColor
}

// palette lists xterm-256 color indexes. The CLI and the TUI both derive
// their colors from it so the two stay in step.
type palette struct {
	text, primary, secondary, success, warning, error, info, value uint8
}

var (
	darkPalette  = palette{text: 254, primary: 39, secondary: 245, success: 82, warning: 220, error: 196, info: 51, value: 141}
	lightPalette = palette{text: 235, primary: 27, secondary: 240, success: 28, warning: 130, error: 124, info: 30, value: 54}
)

func fg(c uint8) string { return fmt.Sprintf("\033[38;5;%dm", c) }

func (p palette) theme(name string) Theme {
	return Theme{
		Name:      name,
		Primary:   fg(p.primary),
		Secondary: fg(p.secondary),
		Success:   fg(p.success),
		Warning:   fg(p.warning),
		Error:     fg(p.error),
		Info:      fg(p.info),
		Value:     fg(p.value),
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}
}

func (p palette) tui() TUITheme {
	c := func(n uint8) lipgloss.TerminalColor { return lipgloss.Color(strconv.Itoa(int(n))) }
	return TUITheme{
		Text:    c(p.text),
		Border:  c(p.primary),
		Accent:  c(p.info),
		Success: c(p.success),
		Warning: c(p.warning),
		Error:   c(p.error),
		Dim:     c(p.secondary),
		Value:   c(p.value),
	}
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = darkPalette.theme("dark")
	// LightTheme uses darker tones for light backgrounds.
	LightTheme = lightPalette.theme("light")
	// NoColorTheme disables all escape sequences.
	NoColorTheme = Theme{Name: "none"}

	noColorTUI = TUITheme{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Value:   lipgloss.NoColor{},
	}

	themeMu      sync.RWMutex
	currentTheme = DarkTheme
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// GetCurrentTUITheme returns the lipgloss palette of the active theme.
func GetCurrentTUITheme() TUITheme {
	switch GetCurrentTheme().Name {
	case NoColorTheme.Name:
		return noColorTUI
	case LightTheme.Name:
		return lightPalette.tui()
	}
	return darkPalette.tui()
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name: "dark", "light" or "none". Unknown
// names select the dark theme.
func SetTheme(name string) {
	switch name {
	case LightTheme.Name:
		SetCurrentTheme(LightTheme)
	case NoColorTheme.Name:
		SetCurrentTheme(NoColorTheme)
	default:
		SetCurrentTheme(DarkTheme)
	}
}

// InitTheme selects the startup theme. Colors are disabled by noColor or by
// a NO_COLOR environment variable (https://no-color.org/); otherwise
// MPICALC_THEME may name the light theme.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv("MPICALC_THEME"))
}
