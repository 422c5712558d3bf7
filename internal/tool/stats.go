package tool

import (
	"sync/atomic"
	"time"
)

// stats tracks per-tool performance counters. Concurrent branches update the
// same tool's counters, so all fields are atomic; no read-modify-write.
type stats struct {
	executions   atomic.Int64
	successes    atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// record adds one invocation outcome.
func (s *stats) record(latency time.Duration, success bool) {
	s.executions.Add(1)
	s.totalLatency.Add(int64(latency))
	if success {
		s.successes.Add(1)
	}
}

// snapshot returns the current counters as rates.
func (s *stats) snapshot() (successRate float64, avgLatency time.Duration, executions int64) {
	executions = s.executions.Load()
	if executions == 0 {
		return 0, 0, 0
	}
	successRate = float64(s.successes.Load()) / float64(executions)
	avgLatency = time.Duration(s.totalLatency.Load() / executions)
	return successRate, avgLatency, executions
}
