// Package metrics tracks process-level counters exposed at GET /metrics.
package metrics

import (
	"sync"
	"time"
)

// Metrics tracks run and tick counters for the /metrics endpoint.
type Metrics struct {
	mu sync.RWMutex

	startTime time.Time

	TotalTicks       int64
	TotalRuns        int64
	CompletedRuns    int64
	FaultedRuns      int64
	ConfirmationsAck int64
	SkipsIssued      int64
}

// New returns a Metrics with its uptime clock started.
func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) IncrementTicks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalTicks++
}

func (m *Metrics) IncrementRunsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalRuns++
}

func (m *Metrics) IncrementRunsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompletedRuns++
}

func (m *Metrics) IncrementRunsFaulted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FaultedRuns++
}

func (m *Metrics) IncrementConfirmations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmationsAck++
}

func (m *Metrics) IncrementSkips() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SkipsIssued++
}

// Snapshot returns a serializable copy of the current counters.
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds":    int64(time.Since(m.startTime).Seconds()),
		"total_ticks":       m.TotalTicks,
		"total_runs":        m.TotalRuns,
		"completed_runs":    m.CompletedRuns,
		"faulted_runs":      m.FaultedRuns,
		"confirmations_ack": m.ConfirmationsAck,
		"skips_issued":      m.SkipsIssued,
	}
}
