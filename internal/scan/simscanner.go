package scan

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/bhjolly/helios/internal/energy"
	"github.com/bhjolly/helios/internal/geom"
	"github.com/bhjolly/helios/internal/pulse"
	"github.com/bhjolly/helios/internal/survey"
)

// Device holds the radiometric parameters of the simulated sensor, in SI
// units.
type Device struct {
	// AveragePowerW is the average emitted power I0.
	AveragePowerW float64
	// WavelengthM is the laser wavelength.
	WavelengthM float64
	// BeamWaistRadiusM is the beam waist radius w0.
	BeamWaistRadiusM float64
	// MinRangeM is the minimum measurement range R0; closer returns are
	// discarded.
	MinRangeM float64
	// ApertureDiameterM is the receiver aperture diameter.
	ApertureDiameterM float64
	// BeamDivergenceRad is the full beam divergence angle.
	BeamDivergenceRad float64
	// EfficiencySys is the overall system efficiency.
	EfficiencySys float64
	// AtmosphericExtinction is the extinction coefficient ae.
	AtmosphericExtinction float64
	// PowerThresholdW discards returns whose received power falls below the
	// receiver sensitivity. Zero keeps everything.
	PowerThresholdW float64
}

// SimScanner is a simulated single-head scanner over a ground-plane scene.
// Its pulse tasks evaluate the radiometric kernel and append measurements to
// the cycle buffers. Apart from Cycle, which is internally locked, the
// scanner is driven only from the engine goroutine.
type SimScanner struct {
	device      Device
	model       energy.Model
	pulseFreqHz float64

	head     *RotatingHead
	platform *LinearPlatform
	cycle    CycleBuffers

	strategy   pulse.Strategy
	dispatcher *pulse.Dispatcher

	outputPath string
	legActive  bool

	pulseCount atomic.Int64
}

// NewSimScanner creates a scanner. The platform's scene must be a
// *GroundScene, since pulse tasks intersect against it analytically.
func NewSimScanner(device Device, model energy.Model, pulseFreqHz float64, head *RotatingHead, platform *LinearPlatform) *SimScanner {
	return &SimScanner{
		device:      device,
		model:       model,
		pulseFreqHz: pulseFreqHz,
		head:        head,
		platform:    platform,
	}
}

// PrepareSimulation resets per-run scanner state.
func (s *SimScanner) PrepareSimulation() {
	s.pulseCount.Store(0)
}

// PrepareScanningPulseProcess fixes the parallelization strategy and
// dispatcher for the run.
func (s *SimScanner) PrepareScanningPulseProcess(strategy pulse.Strategy, dispatcher *pulse.Dispatcher) {
	s.strategy = strategy
	s.dispatcher = dispatcher
}

// PulseFreqHz returns the pulse repetition frequency.
func (s *SimScanner) PulseFreqHz() float64 { return s.pulseFreqHz }

// Head returns the scanning head. The simulated scanner has exactly one.
func (s *SimScanner) Head(i int) ScannerHead { return s.head }

// Platform returns the platform carrying this scanner.
func (s *SimScanner) Platform() Platform { return s.platform }

// Cycle returns the accumulation buffers.
func (s *SimScanner) Cycle() *CycleBuffers { return &s.cycle }

// OutputPath returns the measurement-writer output path, or "" when file
// export is disabled.
func (s *SimScanner) OutputPath() string { return s.outputPath }

// SetOutputPath records the measurement-writer output path exposed through
// the OutputPath facade.
func (s *SimScanner) SetOutputPath(path string) { s.outputPath = path }

// PulseCount returns the number of pulses emitted since preparation.
func (s *SimScanner) PulseCount() int64 { return s.pulseCount.Load() }

// StartLeg configures head, platform and firing state for a leg from origin
// to destination.
func (s *SimScanner) StartLeg(leg *survey.Leg, origin, destination geom.Vec3) {
	s.legActive = leg.Scanner.Active
	s.head.StartSweep(leg.Scanner.SweepRad)
	s.platform.SetLeg(origin, destination, leg.Platform.SpeedMps)
}

// OnSimulationFinished is invoked once after the main loop exits.
func (s *SimScanner) OnSimulationFinished() {}

// DoSimStep rotates the head, records a trajectory sample, and emits the
// step's pulse through the dispatcher when the leg is active.
func (s *SimScanner) DoSimStep(legIndex int, gpsTimeNs float64) {
	if s.pulseFreqHz <= 0 {
		return
	}
	dt := 1.0 / s.pulseFreqHz
	s.head.Rotate(dt)

	pos := s.platform.Position()
	s.cycle.AppendTrajectory(TrajectorySample{
		LegIndex:  legIndex,
		GpsTimeNs: gpsTimeNs,
		Position:  pos,
	})

	if !s.legActive || s.dispatcher == nil {
		return
	}
	s.pulseCount.Add(1)
	s.dispatcher.Submit(s.newPulseTask(legIndex, gpsTimeNs, pos, s.head.Angle()))
}

// newPulseTask builds the immutable per-pulse computation. The returned task
// carries copies of everything it needs, so it never races with the next
// step's single-writer phase.
func (s *SimScanner) newPulseTask(legIndex int, gpsTimeNs float64, origin geom.Vec3, beamAngle float64) pulse.Task {
	d := s.device
	model := s.model
	scene, _ := s.platform.Scene().(*GroundScene)
	cycle := &s.cycle

	return pulse.TaskFunc(func() error {
		if scene == nil {
			return fmt.Errorf("pulse emitted without a ground scene")
		}

		// Beam direction in the across-track plane, beamAngle off nadir.
		dir := geom.Vec3{X: 0, Y: math.Sin(beamAngle), Z: -math.Cos(beamAngle)}
		if dir.Z >= 0 || origin.Z <= 0 {
			// Beam never meets the ground plane: no return.
			return nil
		}
		rng := origin.Z / math.Cos(beamAngle)
		if rng < d.MinRangeM {
			return nil
		}
		hit := origin.Add(dir.Scale(rng))
		incidence := math.Abs(beamAngle)

		// Beam footprint on the target and its effective cross-section.
		footprint := math.Pi * math.Pow(rng*d.BeamDivergenceRad/2.0, 2)
		refl := scene.Reflectance * energy.PhongReflectance(incidence, scene.Specularity, scene.SpecularExponent)
		sigma := energy.CrossSection(refl, footprint, incidence)

		dr2 := d.ApertureDiameterM * d.ApertureDiameterM
		bt2 := d.BeamDivergenceRad * d.BeamDivergenceRad

		emitted := model.EmittedPower(d.AveragePowerW, d.WavelengthM, rng, d.MinRangeM, 0, d.BeamWaistRadiusM)

		var received float64
		if model == energy.ModelLegacy {
			etaAtm := energy.AtmosphericFactor(rng, d.AtmosphericExtinction)
			received = energy.ReceivedPowerLegacy(emitted, dr2, rng, bt2, d.EfficiencySys, etaAtm, sigma)
		} else {
			received = energy.ReceivedPower(
				d.AveragePowerW, d.WavelengthM, rng, d.MinRangeM, 0, d.BeamWaistRadiusM,
				dr2, bt2, d.EfficiencySys, d.AtmosphericExtinction, sigma,
			)
		}
		if math.IsNaN(received) || math.IsInf(received, 0) {
			return fmt.Errorf("non-finite received power at range %.3fm incidence %.4frad", rng, incidence)
		}
		if received < d.PowerThresholdW {
			return nil
		}

		cycle.AppendMeasurement(Measurement{
			LegIndex:       legIndex,
			GpsTimeNs:      gpsTimeNs,
			Hit:            hit,
			RangeM:         rng,
			IncidenceRad:   incidence,
			EmittedPowerW:  emitted,
			ReceivedPowerW: received,
		})
		return nil
	})
}
