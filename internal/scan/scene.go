package scan

// GroundScene is a static horizontal ground plane at z=0 with uniform
// surface material. It satisfies the Scene contract; pulse tasks intersect
// against it analytically.
type GroundScene struct {
	// Reflectance is the diffuse surface reflectance in [0, 1].
	Reflectance float64
	// Specularity is the Phong specular fraction ks in [0, 1].
	Specularity float64
	// SpecularExponent is the Phong specular exponent.
	SpecularExponent float64

	steps int64
}

// PrepareSimulation resets scene dynamics for a run.
func (s *GroundScene) PrepareSimulation(simFreqHz float64) {
	s.steps = 0
}

// DoSimStep advances scene dynamics. The static ground plane only counts
// steps.
func (s *GroundScene) DoSimStep() {
	s.steps++
}

// Steps returns the number of scene steps executed since preparation.
func (s *GroundScene) Steps() int64 { return s.steps }
