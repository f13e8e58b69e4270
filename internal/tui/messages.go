package tui

import (
	"time"

	"github.com/agbru/mpicalc/internal/orchestration"
)

// EvalResultMsg carries the outcome of one evaluation.
type EvalResultMsg struct {
	Generation uint64
	Entry      HistoryEntry
}

// CompareResultMsg carries the per-backend results of a comparison and the
// exit code AnalyzeComparisonResults assigned to them.
type CompareResultMsg struct {
	Generation uint64
	Input      string
	Results    []orchestration.EvaluationResult
	ExitCode   int
}

// ProgressMsg reports evaluation progress.
type ProgressMsg struct {
	Generation      uint64
	AverageProgress float64
	ETA             time.Duration
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg carries a runtime memory sample.
type MemStatsMsg struct {
	HeapAlloc    uint64
	HeapSys      uint64
	NumGC        uint32
	NumGoroutine int
}

// SysStatsMsg carries a system-wide CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}
