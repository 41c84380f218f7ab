package scan

// RotatingHead is a simulated scanning head sweeping at a fixed angular
// speed. The head starts each leg at the negative half of the sweep and
// reports completion once the full sweep angle has been covered.
type RotatingHead struct {
	rotatePerSecRad float64

	sweepRad   float64
	rotatedRad float64
}

// NewRotatingHead creates a head rotating at the given angular speed.
func NewRotatingHead(rotatePerSecRad float64) *RotatingHead {
	return &RotatingHead{rotatePerSecRad: rotatePerSecRad}
}

// StartSweep arms the head for a new leg with the given sweep angle.
func (h *RotatingHead) StartSweep(sweepRad float64) {
	h.sweepRad = sweepRad
	h.rotatedRad = 0
}

// Rotate advances the head by dt seconds. Rotation saturates at the sweep
// angle rather than overshooting.
func (h *RotatingHead) Rotate(dt float64) {
	h.rotatedRad += h.rotatePerSecRad * dt
	if h.rotatedRad > h.sweepRad {
		h.rotatedRad = h.sweepRad
	}
}

// Angle returns the current beam angle relative to nadir: the sweep runs
// from -sweep/2 to +sweep/2.
func (h *RotatingHead) Angle() float64 {
	return h.rotatedRad - h.sweepRad/2.0
}

// RotateCompleted reports whether the head has covered the full sweep. A
// head armed with a zero sweep is complete immediately.
func (h *RotatingHead) RotateCompleted() bool {
	return h.rotatedRad >= h.sweepRad
}
