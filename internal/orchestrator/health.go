package orchestrator

import "log/slog"

// StallMonitor watches consecutive zero-depth iterations and logs a
// warning once a threshold is crossed. It is checked once per loop
// iteration with no suspension of its own, grounded on the teacher's
// internal/audiocore/health_monitor.go silence-detection pattern but
// without that file's own goroutine — this monitor never blocks, so it
// introduces no new suspension point into the orchestrator's pull loop.
type StallMonitor struct {
	threshold int
	streak    int
	warned    bool
	log       *slog.Logger
}

// NewStallMonitor returns a monitor that warns after threshold consecutive
// zero-depth checks. A threshold <= 0 disables the monitor.
func NewStallMonitor(threshold int, log *slog.Logger) *StallMonitor {
	return &StallMonitor{threshold: threshold, log: log}
}

// Check records one sample of buffer depth and logs a warning the first
// time the streak of zero-depth samples reaches the threshold. It returns
// true exactly once per stall episode.
func (m *StallMonitor) Check(depthMs float64, sessionID string) bool {
	if m.threshold <= 0 {
		return false
	}

	if depthMs > 0 {
		m.streak = 0
		m.warned = false
		return false
	}

	m.streak++
	if m.streak >= m.threshold && !m.warned {
		m.warned = true
		if m.log != nil {
			m.log.Warn("playback buffer starved",
				"session_id", sessionID,
				"consecutive_empty_iterations", m.streak,
			)
		}
		return true
	}
	return false
}
