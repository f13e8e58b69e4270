// Package ui holds the color themes shared by the CLI and the terminal UI.
// CLI code uses the Color* accessors, which read the active Theme; the TUI
// uses the lipgloss palette returned by GetCurrentTUITheme.
package ui
