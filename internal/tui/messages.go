package tui

import (
	"time"

	"github.com/agbru/fibdispatch/internal/orchestration"
	"github.com/agbru/fibdispatch/internal/sysmon"
)

// ProgressMsg carries one aggregated progress update of the running round.
type ProgressMsg struct {
	Generation      uint64
	AverageProgress float64
	ETA             time.Duration
}

// RoundDoneMsg carries the results of a finished round.
type RoundDoneMsg struct {
	Generation uint64
	Index      uint64
	Results    []orchestration.CalculationResult
}

// TickMsg drives the periodic system sampling.
type TickMsg time.Time

// SysStatsMsg carries a resource usage sample.
type SysStatsMsg sysmon.Stats
