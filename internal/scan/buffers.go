package scan

import "sync"

// CycleBuffers accumulates completed measurements and trajectory samples
// between callback flushes. Pulse workers append concurrently; the engine
// drains under the same lock it invokes the callback with, so appends block
// for the duration of a flush. That blocking is the intended backpressure
// point when callback consumers fall behind.
//
// The buffer lock is deliberately separate from the engine's pause lock:
// pause/resume and flushing are independent concerns.
type CycleBuffers struct {
	mu           sync.Mutex
	measurements []Measurement
	trajectories []TrajectorySample
}

// AppendMeasurement adds one measurement. Safe for concurrent use.
func (b *CycleBuffers) AppendMeasurement(m Measurement) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.measurements = append(b.measurements, m)
}

// AppendTrajectory adds one trajectory sample. Safe for concurrent use.
func (b *CycleBuffers) AppendTrajectory(t TrajectorySample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trajectories = append(b.trajectories, t)
}

// Counts returns the number of buffered measurements and trajectory samples.
func (b *CycleBuffers) Counts() (measurements, trajectories int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.measurements), len(b.trajectories)
}

// FlushUnder invokes fn with the accumulated contents while holding the
// buffer lock, then clears both buffers. fn must not retain the slices
// beyond the call.
func (b *CycleBuffers) FlushUnder(fn func(measurements []Measurement, trajectories []TrajectorySample)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.measurements, b.trajectories)
	b.measurements = b.measurements[:0]
	b.trajectories = b.trajectories[:0]
}
