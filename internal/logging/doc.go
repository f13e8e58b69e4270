// Package logging provides a unified logging interface for the mpicalc
// binaries. Components log through the Logger interface so the backend
// (zerolog for structured output, the standard library logger for plain
// text) can be swapped without touching call sites.
package logging
