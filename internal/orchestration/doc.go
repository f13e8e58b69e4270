// Package orchestration runs a program on one or more backends concurrently
// and compares the results. Presentation is delegated to the ProgressReporter
// and ResultPresenter interfaces so the same logic serves the CLI, the TUI
// and the tests.
package orchestration
