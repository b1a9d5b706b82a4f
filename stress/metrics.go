// Package stress provides stress testing utilities for Task Pilot.
package stress

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects stress test measurements.
type Metrics struct {
	// Message handling
	MessagesHandled   int64
	FlowsCompleted    int64
	RemindersSent     int64
	ProcessingTimeSum int64 // nanoseconds

	// Concurrency
	PeakGoroutines    int
	CurrentGoroutines int
	PeakConcurrent    int64
	currentConcurrent int64

	// Memory
	InitialMemory uint64
	PeakMemory    uint64
	FinalMemory   uint64

	// Timing
	StartTime time.Time
	EndTime   time.Time

	mu sync.Mutex
}

// NewMetrics creates a new metrics collector with initial memory snapshot.
func NewMetrics() *Metrics {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &Metrics{
		InitialMemory:     memStats.Alloc,
		PeakMemory:        memStats.Alloc,
		StartTime:         time.Now(),
		PeakGoroutines:    runtime.NumGoroutine(),
		CurrentGoroutines: runtime.NumGoroutine(),
	}
}

// RecordMessageStart marks the beginning of one handled message.
func (m *Metrics) RecordMessageStart() {
	current := atomic.AddInt64(&m.currentConcurrent, 1)

	m.mu.Lock()
	if current > m.PeakConcurrent {
		m.PeakConcurrent = current
	}
	m.mu.Unlock()
}

// RecordMessageDone marks the end of one handled message.
func (m *Metrics) RecordMessageDone(duration time.Duration) {
	atomic.AddInt64(&m.MessagesHandled, 1)
	atomic.AddInt64(&m.ProcessingTimeSum, int64(duration))
	atomic.AddInt64(&m.currentConcurrent, -1)
}

// RecordFlowCompleted counts a finished multi-step flow.
func (m *Metrics) RecordFlowCompleted() {
	atomic.AddInt64(&m.FlowsCompleted, 1)
}

// RecordRemindersSent adds n delivered reminders.
func (m *Metrics) RecordRemindersSent(n int) {
	atomic.AddInt64(&m.RemindersSent, int64(n))
}

// SampleMemoryAndGoroutines takes a snapshot of memory and goroutine count.
// Call periodically during the test.
func (m *Metrics) SampleMemoryAndGoroutines() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	goroutines := runtime.NumGoroutine()

	m.mu.Lock()
	defer m.mu.Unlock()

	if memStats.Alloc > m.PeakMemory {
		m.PeakMemory = memStats.Alloc
	}
	if goroutines > m.PeakGoroutines {
		m.PeakGoroutines = goroutines
	}
	m.CurrentGoroutines = goroutines
}

// Finalize captures final metrics snapshot.
func (m *Metrics) Finalize() {
	m.EndTime = time.Now()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.Lock()
	m.FinalMemory = memStats.Alloc
	m.CurrentGoroutines = runtime.NumGoroutine()
	m.mu.Unlock()
}

// Duration returns the total test duration.
func (m *Metrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// MessagesPerSecond returns the handling rate.
func (m *Metrics) MessagesPerSecond() float64 {
	duration := m.Duration()
	if duration == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.MessagesHandled)) / duration.Seconds()
}

// AverageProcessingTime returns average time per message.
func (m *Metrics) AverageProcessingTime() time.Duration {
	handled := atomic.LoadInt64(&m.MessagesHandled)
	if handled == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.ProcessingTimeSum) / handled)
}

// MemoryGrowth returns bytes allocated since start.
func (m *Metrics) MemoryGrowth() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FinalMemory > m.InitialMemory {
		return int64(m.FinalMemory - m.InitialMemory)
	}
	return 0
}

// GetPeakMemory returns the peak memory usage (thread-safe).
func (m *Metrics) GetPeakMemory() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PeakMemory
}

// GetPeakGoroutines returns peak goroutine count (thread-safe).
func (m *Metrics) GetPeakGoroutines() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PeakGoroutines
}
