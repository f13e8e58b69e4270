package ui

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// Theme tests share global state and do not run in parallel.

func TestSetTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"sepia", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) selected %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	InitTheme(true)
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("noColor should disable escape sequences")
	}

	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Error("NO_COLOR should disable colors")
	}
	if _, ok := GetCurrentTUITheme().Text.(lipgloss.NoColor); !ok {
		t.Error("TUI palette should follow the no-color theme")
	}
}

func TestColorAccessors(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	SetCurrentTheme(DarkTheme)
	pairs := map[string][2]string{
		"red":     {ColorRed(), DarkTheme.Error},
		"green":   {ColorGreen(), DarkTheme.Success},
		"yellow":  {ColorYellow(), DarkTheme.Warning},
		"blue":    {ColorBlue(), DarkTheme.Primary},
		"cyan":    {ColorCyan(), DarkTheme.Info},
		"magenta": {ColorMagenta(), DarkTheme.Value},
		"grey":    {ColorGrey(), DarkTheme.Secondary},
		"bold":    {ColorBold(), DarkTheme.Bold},
		"under":   {ColorUnderline(), DarkTheme.Underline},
		"reset":   {ColorReset(), DarkTheme.Reset},
	}
	for name, p := range pairs {
		if p[0] != p[1] || p[0] == "" {
			t.Errorf("%s = %q, want %q", name, p[0], p[1])
		}
	}
	if _, ok := GetCurrentTUITheme().Text.(lipgloss.Color); !ok {
		t.Error("dark theme should use colored TUI palette")
	}
}

func TestLightThemeReachesTUI(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
	t.Setenv("MPICALC_THEME", "light")
	InitTheme(false)
	if GetCurrentTheme().Name != "light" {
		t.Fatalf("MPICALC_THEME=light selected %q", GetCurrentTheme().Name)
	}
	if got := GetCurrentTUITheme().Error; got != lipgloss.Color("124") {
		t.Errorf("light TUI error color = %v, want 124", got)
	}
	if LightTheme.Error != "\033[38;5;124m" {
		t.Errorf("light ANSI error = %q", LightTheme.Error)
	}
}
