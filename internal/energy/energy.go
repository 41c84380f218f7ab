// Package energy implements the closed-form radiometric equations of the
// laser-radar model: emitted and received power, atmospheric attenuation,
// target cross-section and Phong reflectance. All functions are pure and
// operate on finite float64 inputs, so they are safe to call concurrently
// from pulse workers.
//
// The exact constant factors and exponent placements are calibrated against
// the published models (Carlsson et al. 2000/2001, Wagner 2010, Jutzi and
// Gross 2009). Do not rearrange the arithmetic: a mathematically equivalent
// form with a different floating-point path changes simulated sensor output.
package energy

import "math"

const (
	twoPiSquared = 2.0 * math.Pi * math.Pi
	fourPi       = 4.0 * math.Pi
	halfPi       = math.Pi / 2.0
)

// EmittedPower computes the space distribution of beam energy, decreasing
// away from the beam center (Carlsson et al., 2001). i0 is the average
// power, lambda the wavelength, r the radial distance from the beam center,
// rng the range to the target, r0 the minimum range and w0 the beam waist
// radius.
func EmittedPower(i0, lambda, rng, r0, r, w0 float64) float64 {
	denom := lambda * lambda * (r0*r0 + rng*rng)
	return i0 / math.Exp(twoPiSquared*r*r*w0*w0/denom)
}

// EmittedPowerLegacy computes emitted power through the historical
// beam-width parameterization. It is numerically close to EmittedPower but
// follows a different floating-point path; downstream calibration depends on
// its exact behavior, so it is kept verbatim and never simplified into the
// current form.
func EmittedPowerLegacy(i0, lambda, rng, r0, r, w0 float64) float64 {
	denom := math.Pi * w0 * w0
	omega := (lambda * rng) / denom
	omega0 := (lambda * r0) / denom
	w := w0 * math.Sqrt(omega0*omega0+omega*omega)
	return i0 * math.Exp((-2.0*r*r)/(w*w))
}

// ReceivedPower evaluates the laser radar equation (Carlsson et al., 2000)
// from primitive inputs. dr2 is the squared receiver aperture diameter, bt2
// the squared beam divergence, etaSys the system efficiency, ae the
// atmospheric extinction coefficient and sigma the target cross-section.
func ReceivedPower(i0, lambda, rng, r0, r, w0, dr2, bt2, etaSys, ae, sigma float64) float64 {
	rngSquared := rng * rng
	numer := i0 * dr2 * etaSys * sigma
	expon := math.Exp(
		(twoPiSquared*r*r*w0*w0)/(lambda*lambda*(r0*r0+rngSquared)) +
			2.0*rng*ae,
	)
	denom := fourPi * rngSquared * rngSquared * bt2 * expon
	return numer / denom
}

// ReceivedPowerLegacy evaluates the laser radar equation from a precomputed
// emitted power pe and atmospheric factor etaAtm, for pipelines that already
// evaluated both at an earlier stage. When pe and etaAtm are the equivalent
// intermediate values, the result matches ReceivedPower within floating
// point tolerance.
func ReceivedPowerLegacy(pe, dr2, rng, bt2, etaSys, etaAtm, sigma float64) float64 {
	return (pe * dr2) / (fourPi * math.Pow(rng, 4) * bt2) * etaSys * etaAtm * sigma
}

// AtmosphericFactor returns the fraction of energy left after round-trip
// attenuation by air particles at range rng, in (0, 1].
func AtmosphericFactor(rng, ae float64) float64 {
	return math.Exp(-2.0 * rng * ae)
}

// CrossSection computes the effective radar cross-section of a surface patch
// using the ALS simplification of Wagner (2010), eq. 14. f is the
// reflectance-related factor, alf the footprint area and theta the incidence
// angle.
func CrossSection(f, alf, theta float64) float64 {
	return fourPi * f * alf * math.Cos(theta)
}

// PhongReflectance computes the bidirectional reflectance of a target using
// the Phong model (Jutzi and Gross, 2009): a diffuse term (1-ks)*cos(theta)
// plus a specular term ks*|cos(thetaSpec)|^ns. Incidence angles beyond pi/2
// fold into the residual angle theta-pi/2 rather than reflecting
// symmetrically; the discontinuity at exactly pi/2 is documented model
// behavior and is preserved.
func PhongReflectance(incidenceAngle, specularity, specularExponent float64) float64 {
	ks := specularity
	kd := 1.0 - ks
	diffuse := kd * math.Cos(incidenceAngle)
	specularAngle := incidenceAngle
	if incidenceAngle > halfPi {
		specularAngle = incidenceAngle - halfPi
	}
	specular := ks * math.Pow(
		math.Abs(math.Cos(specularAngle)),
		specularExponent,
	)
	return diffuse + specular
}
