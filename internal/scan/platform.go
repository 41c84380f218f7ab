package scan

import "github.com/bhjolly/helios/internal/geom"

// waypointEpsilonM is how close the platform must get to the leg destination
// before the waypoint counts as reached.
const waypointEpsilonM = 1e-3

// LinearPlatform is a simulated moving platform flying straight between leg
// waypoints at constant speed.
type LinearPlatform struct {
	position    geom.Vec3
	destination geom.Vec3
	speedMps    float64
	scene       Scene
}

// NewLinearPlatform creates a platform at the given start position.
func NewLinearPlatform(start geom.Vec3, speedMps float64, scene Scene) *LinearPlatform {
	return &LinearPlatform{
		position:    start,
		destination: start,
		speedMps:    speedMps,
		scene:       scene,
	}
}

// SetLeg teleports the platform to origin and points it at destination.
func (p *LinearPlatform) SetLeg(origin, destination geom.Vec3, speedMps float64) {
	p.position = origin
	p.destination = destination
	if speedMps > 0 {
		p.speedMps = speedMps
	}
}

// Position returns the current platform position.
func (p *LinearPlatform) Position() geom.Vec3 { return p.position }

// PrepareSimulation readies the platform for a scanner firing at the given
// pulse frequency. The linear platform has no per-run state to build.
func (p *LinearPlatform) PrepareSimulation(pulseFreqHz float64) {}

// DoSimStep advances the platform by one step of 1/pulseFreqHz seconds,
// stopping exactly on the destination rather than overshooting it.
func (p *LinearPlatform) DoSimStep(pulseFreqHz float64) {
	if pulseFreqHz <= 0 {
		return
	}
	remaining := p.destination.Sub(p.position)
	dist := remaining.Norm()
	if dist == 0 {
		return
	}
	stepDist := p.speedMps / pulseFreqHz
	if stepDist >= dist {
		p.position = p.destination
		return
	}
	p.position = p.position.Add(remaining.Unit().Scale(stepDist))
}

// WaypointReached reports whether the platform has arrived at the leg
// destination.
func (p *LinearPlatform) WaypointReached() bool {
	return p.position.DistanceTo(p.destination) < waypointEpsilonM
}

// Scene returns the scene the platform moves through.
func (p *LinearPlatform) Scene() Scene { return p.scene }
