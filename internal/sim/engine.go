package sim

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/bhjolly/helios/internal/gpstime"
	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/pulse"
	"github.com/bhjolly/helios/internal/scan"
	"github.com/bhjolly/helios/internal/timeutil"
)

const (
	minSimSpeedFactor = 0.0001
	maxSimSpeedFactor = 10000.0
)

// Callback receives the cycle buffers collected since the previous flush.
// It runs with the buffer lock held, so pulse workers appending new returns
// block until it finishes. outputPath is empty unless file export is on.
type Callback func(measurements []scan.Measurement, trajectories []scan.TrajectorySample, outputPath string)

// Config carries everything a Simulation needs to run one survey.
type Config struct {
	Scanner    scan.Scanner
	Dispatcher *pulse.Dispatcher
	Strategy   pulse.Strategy

	// FixedGpsTimeStart pins the simulated GPS start time. Empty means the
	// wall clock decides.
	FixedGpsTimeStart string

	// Callback, when non-nil, fires every CallbackFrequency steps and once
	// more during shutdown. A frequency of zero defers all flushing to
	// shutdown.
	Callback          Callback
	CallbackFrequency int
	ExportToFile      bool

	SimSpeedFactor float64
	Reporter       Reporter
	Clock          timeutil.Clock
}

// Simulation drives a scanner through a fixed-step main loop: one loop step
// per emitted pulse, physics dispatched through the pulse dispatcher, and
// simulated GPS time advanced by the pulse period each step.
type Simulation struct {
	scanner    scan.Scanner
	dispatcher *pulse.Dispatcher
	strategy   pulse.Strategy
	stepLoop   *StepLoop
	clock      timeutil.Clock
	reporter   Reporter

	fixedGpsTimeStart string
	currentGpsTimeNs  atomic.Uint64 // float64 bits, updated by the loop goroutine
	stepGpsTimeNs     float64

	callback     Callback
	callbackFreq int
	exportToFile bool

	onLegComplete func()
	legIndex      atomic.Int64

	simSpeedFactor float64

	// pauseMu is held for the whole time the simulation is paused. The main
	// loop acquires and releases it once per step, so a paused loop parks
	// here between steps.
	pauseMu sync.Mutex

	ctrlMu sync.Mutex
	paused bool
	state  State

	stopped  atomic.Bool
	finished atomic.Bool
}

// NewSimulation assembles a simulation in the idle state. Nothing moves
// until Start.
func NewSimulation(cfg Config) *Simulation {
	s := &Simulation{
		scanner:           cfg.Scanner,
		dispatcher:        cfg.Dispatcher,
		strategy:          cfg.Strategy,
		clock:             cfg.Clock,
		reporter:          cfg.Reporter,
		fixedGpsTimeStart: cfg.FixedGpsTimeStart,
		callback:          cfg.Callback,
		callbackFreq:      cfg.CallbackFrequency,
		exportToFile:      cfg.ExportToFile,
		simSpeedFactor:    1.0,
		state:             StateIdle,
	}
	if s.clock == nil {
		s.clock = timeutil.RealClock{}
	}
	if s.reporter == nil {
		s.reporter = nopReporter{}
	}
	if cfg.SimSpeedFactor != 0 {
		s.SetSimSpeedFactor(cfg.SimSpeedFactor)
	}
	s.stepLoop = NewStepLoop(s.doSimStep)
	return s
}

// SetSimSpeedFactor clamps the requested factor into the supported range
// and logs the effective value when the request was out of bounds.
func (s *Simulation) SetSimSpeedFactor(factor float64) {
	effective := factor
	if effective < minSimSpeedFactor {
		effective = minSimSpeedFactor
	} else if effective > maxSimSpeedFactor {
		effective = maxSimSpeedFactor
	}
	if effective != factor {
		monitoring.Logf("Simulation: speed factor %g out of range, using %g", factor, effective)
	}
	s.simSpeedFactor = effective
}

// SimSpeedFactor returns the effective speed factor.
func (s *Simulation) SimSpeedFactor() float64 { return s.simSpeedFactor }

// SetOnLegComplete installs the hook invoked when the scanner head has
// finished its sweep and the platform sits on its waypoint. Without a hook
// the simulation stops at the first completed leg.
func (s *Simulation) SetOnLegComplete(fn func()) { s.onLegComplete = fn }

// CurrentLegIndex returns the leg the engine is currently simulating. It is
// safe to call from any goroutine while the loop runs.
func (s *Simulation) CurrentLegIndex() int { return int(s.legIndex.Load()) }

// SetCurrentLegIndex moves the engine to another leg. Callers sequence legs
// from the leg-complete hook, which runs on the loop goroutine.
func (s *Simulation) SetCurrentLegIndex(i int) { s.legIndex.Store(int64(i)) }

// CurrentGpsTimeNs returns the simulated GPS time of the upcoming step, in
// nanoseconds into the GPS week. It is safe to call from any goroutine
// while the loop runs.
func (s *Simulation) CurrentGpsTimeNs() float64 {
	return math.Float64frombits(s.currentGpsTimeNs.Load())
}

func (s *Simulation) setGpsTimeNs(ns float64) {
	s.currentGpsTimeNs.Store(math.Float64bits(ns))
}

// StepLoop exposes the loop for inspection of step count and period.
func (s *Simulation) StepLoop() *StepLoop { return s.stepLoop }

// State reports the lifecycle phase.
func (s *Simulation) State() State {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	return s.state
}

func (s *Simulation) setState(st State) {
	s.ctrlMu.Lock()
	s.state = st
	s.ctrlMu.Unlock()
}

// Stop requests a stop. The loop exits after finishing the step in flight.
func (s *Simulation) Stop() { s.stopped.Store(true) }

// Stopped reports whether a stop has been requested.
func (s *Simulation) Stopped() bool { return s.stopped.Load() }

// Finished reports whether shutdown has completed. It latches.
func (s *Simulation) Finished() bool { return s.finished.Load() }

// Pause suspends or resumes the main loop. Pausing acquires the pause lock
// so the loop parks at its next step boundary; resuming releases it.
// Redundant calls are no-ops.
func (s *Simulation) Pause(paused bool) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	if paused == s.paused {
		return
	}
	s.paused = paused
	if paused {
		s.pauseMu.Lock()
		s.state = StatePaused
		monitoring.Logf("Simulation: paused")
	} else {
		s.pauseMu.Unlock()
		s.state = StateRunning
		monitoring.Logf("Simulation: resumed")
	}
}

// Start prepares the simulation and runs the main loop to completion. It
// blocks until a stop is requested and shutdown has finished. A preparation
// failure returns the error and leaves the simulation idle.
func (s *Simulation) Start() error {
	s.reporter.PreStart()
	if err := s.prepare(); err != nil {
		return err
	}
	s.setState(StateRunning)
	monitoring.Logf("Simulation: starting main loop at %g Hz", s.scanner.PulseFreqHz())

	start := s.clock.Now()
	sinceFlush := 0
	for !s.stopped.Load() {
		s.pauseMu.Lock()
		s.pauseMu.Unlock()
		s.stepLoop.DoStep()
		sinceFlush++
		if s.callback != nil && s.callbackFreq > 0 && sinceFlush >= s.callbackFreq {
			s.flushCycle()
			sinceFlush = 0
		}
	}
	mainLoopSeconds := s.clock.Since(start).Seconds()
	s.reporter.PreFinish(mainLoopSeconds)
	monitoring.Logf("Simulation: main loop finished after %d steps in %.3fs",
		s.stepLoop.CurrentStep(), mainLoopSeconds)

	s.scanner.OnSimulationFinished()
	s.Shutdown()
	s.reporter.PostFinish(s.clock.Since(start).Seconds())
	return nil
}

func (s *Simulation) prepare() error {
	s.setState(StatePreparing)
	gps, err := gpstime.CurrentGpsTime(s.fixedGpsTimeStart, s.clock)
	if err != nil {
		s.setState(StateIdle)
		return fmt.Errorf("preparing simulation: %w", err)
	}
	s.setGpsTimeNs(gps)

	freq := s.scanner.PulseFreqHz()
	if freq <= 0 {
		s.setState(StateIdle)
		return fmt.Errorf("preparing simulation: pulse frequency %g Hz is not positive", freq)
	}
	s.scanner.Platform().PrepareSimulation(freq)
	s.scanner.Platform().Scene().PrepareSimulation(freq)
	s.scanner.PrepareSimulation()
	s.scanner.PrepareScanningPulseProcess(s.strategy, s.dispatcher)

	s.stepLoop.SetFrequency(freq)
	s.stepLoop.SetCurrentStep(0)
	s.stepGpsTimeNs = 1e9 * s.stepLoop.Period()
	s.stopped.Store(false)
	s.finished.Store(false)
	return nil
}

// doSimStep advances the world by one pulse period. When the scanner head
// has completed its sweep and the platform has reached its waypoint, the
// step is spent on leg handoff instead of physical simulation.
func (s *Simulation) doSimStep() {
	if s.scanner.Head(0).RotateCompleted() && s.scanner.Platform().WaypointReached() {
		if s.onLegComplete != nil {
			s.onLegComplete()
		} else {
			s.Stop()
		}
		return
	}

	freq := s.scanner.PulseFreqHz()
	s.scanner.Platform().DoSimStep(freq)
	s.scanner.DoSimStep(s.CurrentLegIndex(), s.CurrentGpsTimeNs())
	if s.dispatcher != nil {
		s.dispatcher.Drain()
	}
	s.scanner.Platform().Scene().DoSimStep()
	s.setGpsTimeNs(gpstime.WrapWeek(s.CurrentGpsTimeNs() + s.stepGpsTimeNs))
}

func (s *Simulation) flushCycle() {
	outputPath := ""
	if s.exportToFile {
		outputPath = s.scanner.OutputPath()
	}
	s.scanner.Cycle().FlushUnder(func(ms []scan.Measurement, ts []scan.TrajectorySample) {
		s.callback(ms, ts, outputPath)
	})
}

// Shutdown flushes whatever remains in the cycle buffers and latches the
// finished flag. It is safe to call more than once; only the first call
// does work.
func (s *Simulation) Shutdown() {
	if s.finished.Swap(true) {
		return
	}
	if s.callback != nil {
		s.flushCycle()
	}
	s.setState(StateFinished)
	monitoring.Logf("Simulation: shutdown complete")
}
