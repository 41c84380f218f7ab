package scan

import "github.com/bhjolly/helios/internal/pulse"

// ScannerHead reports the rotation state of one scanning head.
type ScannerHead interface {
	// RotateCompleted reports whether the head has finished its rotation
	// sweep for the current leg.
	RotateCompleted() bool
}

// Scene is the 3-D environment pulses interact with. The engine only
// prepares it and ticks it; intersection happens inside pulse tasks.
type Scene interface {
	// PrepareSimulation readies the scene for the given simulation
	// frequency, mostly relevant for dynamic scenes.
	PrepareSimulation(simFreqHz float64)

	// DoSimStep advances scene dynamics by one step.
	DoSimStep()
}

// Platform carries the scanner through the scene.
type Platform interface {
	// PrepareSimulation readies the platform to work with a scanner firing
	// at the given pulse frequency.
	PrepareSimulation(pulseFreqHz float64)

	// DoSimStep advances the platform pose by one step of 1/pulseFreqHz
	// seconds.
	DoSimStep(pulseFreqHz float64)

	// WaypointReached reports whether the platform has arrived at the
	// current leg's destination.
	WaypointReached() bool

	// Scene returns the scene the platform moves through.
	Scene() Scene
}

// Scanner is the sensor the engine drives. One step of the scanner emits the
// pulses due in that step and routes their radiometric computation through
// the configured dispatcher.
type Scanner interface {
	// PrepareSimulation resets per-run scanner state.
	PrepareSimulation()

	// PrepareScanningPulseProcess fixes the parallelization strategy and
	// dispatcher for the run.
	PrepareScanningPulseProcess(strategy pulse.Strategy, dispatcher *pulse.Dispatcher)

	// PulseFreqHz returns the configured pulse repetition frequency, which
	// is also the simulation step frequency.
	PulseFreqHz() float64

	// DoSimStep rotates the head and emits the step's pulses, stamped with
	// the given GPS time.
	DoSimStep(legIndex int, gpsTimeNs float64)

	// Head returns the scanning head at the given index.
	Head(i int) ScannerHead

	// Platform returns the platform carrying this scanner.
	Platform() Platform

	// Cycle returns the accumulation buffers pulse workers append to and
	// the engine drains.
	Cycle() *CycleBuffers

	// OutputPath returns the current measurement-writer output path, or ""
	// when file export is disabled.
	OutputPath() string

	// OnSimulationFinished is invoked once after the main loop exits.
	OnSimulationFinished()
}
