// Package pulse decouples per-pulse computation volume from the available
// parallel workers. A Dispatcher batches opaque pulse tasks into chunks and
// feeds them to a fixed goroutine pool; Drain is the per-step barrier that
// guarantees every pulse of a simulation step has finished before the engine
// advances time.
package pulse

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bhjolly/helios/internal/monitoring"
)

// Task is one unit of per-pulse work: scan geometry plus radiometric inputs,
// immutable once created and consumed exactly once by a worker. A returned
// error marks the task as failed without affecting siblings in its batch.
type Task interface {
	Run() error
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func() error

// Run invokes the function.
func (f TaskFunc) Run() error { return f() }

// maxDynamicGrowth caps how far StrategyDynamicChunk may scale a batch
// beyond the configured chunk size.
const maxDynamicGrowth = 8

// Config describes a Dispatcher.
type Config struct {
	// Strategy selects batching behavior. Fixed for the dispatcher lifetime.
	Strategy Strategy
	// ChunkSize is the batch size for chunked strategies; must be >= 1.
	ChunkSize int
	// Workers is the pool size; defaults to GOMAXPROCS when <= 0.
	Workers int
}

// Dispatcher batches pulse tasks and runs them on a worker pool. All methods
// are safe for concurrent use, though in the simulator Submit is only called
// from the single-writer scanner phase of each step.
type Dispatcher struct {
	strategy  Strategy
	chunkSize int
	workers   int

	mu      sync.Mutex
	batch   []Task
	closed  bool
	batches chan []Task

	pending  sync.WaitGroup // outstanding tasks, successful or failed
	workerWG sync.WaitGroup

	submitted  atomic.Int64
	completed  atomic.Int64
	failures   atomic.Int64
	batchCount atomic.Int64
}

// NewDispatcher validates cfg, starts the worker pool and returns a ready
// dispatcher.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.ChunkSize < 1 {
		return nil, fmt.Errorf("dispatcher chunk size must be >= 1, got %d", cfg.ChunkSize)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	d := &Dispatcher{
		strategy:  cfg.Strategy,
		chunkSize: cfg.ChunkSize,
		workers:   workers,
		batches:   make(chan []Task, workers*2),
	}

	for i := 0; i < workers; i++ {
		d.workerWG.Add(1)
		go func() {
			defer d.workerWG.Done()
			for batch := range d.batches {
				for _, t := range batch {
					d.runTask(t)
				}
			}
		}()
	}

	return d, nil
}

// Submit accepts one task. Under StrategySequential the task runs on the
// calling goroutine before Submit returns; otherwise it is buffered into the
// current batch and handed to the pool once the batch is full.
func (d *Dispatcher) Submit(t Task) {
	d.submitted.Add(1)

	if d.strategy == StrategySequential {
		d.pending.Add(1)
		d.batchCount.Add(1)
		d.runTask(t)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		monitoring.Logf("Dispatcher: dropping task submitted after Close")
		return
	}
	d.batch = append(d.batch, t)
	if len(d.batch) >= d.effectiveChunkSize() {
		d.dispatchLocked()
	}
}

// SubmitAll submits a sequence of tasks in order.
func (d *Dispatcher) SubmitAll(tasks []Task) {
	for _, t := range tasks {
		d.Submit(t)
	}
}

// Flush hands any partially filled batch to the pool without waiting for it
// to complete.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.batch) > 0 && !d.closed {
		d.dispatchLocked()
	}
}

// Drain flushes the partial batch and blocks until every submitted task has
// finished, successfully or not. This is the step barrier: the engine calls
// it before advancing GPS time.
func (d *Dispatcher) Drain() {
	d.Flush()
	d.pending.Wait()
}

// Close drains outstanding work and stops the worker pool. The dispatcher
// must not be used afterwards.
func (d *Dispatcher) Close() {
	d.Drain()
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	close(d.batches)
	d.workerWG.Wait()
}

// Submitted returns the number of tasks accepted so far.
func (d *Dispatcher) Submitted() int64 { return d.submitted.Load() }

// Completed returns the number of tasks that have finished, including failed
// ones.
func (d *Dispatcher) Completed() int64 { return d.completed.Load() }

// FailureCount returns the number of tasks that failed or panicked.
func (d *Dispatcher) FailureCount() int64 { return d.failures.Load() }

// BatchCount returns the number of batches handed to workers so far.
func (d *Dispatcher) BatchCount() int64 { return d.batchCount.Load() }

// effectiveChunkSize returns the batch size threshold for the current
// backlog. Callers must hold d.mu.
func (d *Dispatcher) effectiveChunkSize() int {
	if d.strategy != StrategyDynamicChunk {
		return d.chunkSize
	}
	growth := 1 + len(d.batches)
	if growth > maxDynamicGrowth {
		growth = maxDynamicGrowth
	}
	return d.chunkSize * growth
}

// dispatchLocked moves the current batch to the pool. Callers must hold d.mu.
func (d *Dispatcher) dispatchLocked() {
	batch := d.batch
	d.batch = nil
	d.pending.Add(len(batch))
	d.batchCount.Add(1)
	d.batches <- batch
}

// runTask executes one task, isolating failures so siblings and the step
// barrier are unaffected.
func (d *Dispatcher) runTask(t Task) {
	defer d.pending.Done()
	defer d.completed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			d.failures.Add(1)
			monitoring.Logf("Dispatcher: pulse task panicked: %v", r)
		}
	}()
	if err := t.Run(); err != nil {
		d.failures.Add(1)
		monitoring.Logf("Dispatcher: pulse task failed: %v", err)
	}
}
