// Package units provides shared constants and conversions for the angle and
// power units used across the simulator.
package units

import "math"

// Angle unit constants
const (
	Radians      = "rad"
	Degrees      = "deg"
	Milliradians = "mrad"
)

// ValidAngleUnits contains all valid angle unit values
var ValidAngleUnits = []string{Radians, Degrees, Milliradians}

// IsValidAngleUnit checks if the given unit is in the list of valid angle units
func IsValidAngleUnit(unit string) bool {
	for _, validUnit := range ValidAngleUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// DegToRad converts an angle in degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts an angle in radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// ConvertAngle converts an angle from radians to the target units.
// Angles are stored internally in radians.
func ConvertAngle(rad float64, targetUnits string) float64 {
	switch targetUnits {
	case Degrees:
		return RadToDeg(rad)
	case Milliradians:
		return rad * 1000.0
	case Radians:
		return rad
	default:
		return rad // default to radians if unknown unit
	}
}

// ToRadians converts an angle in the given units to radians, the inverse of
// ConvertAngle.
func ToRadians(value float64, sourceUnits string) float64 {
	switch sourceUnits {
	case Degrees:
		return DegToRad(value)
	case Milliradians:
		return value / 1000.0
	case Radians:
		return value
	default:
		return value // default to radians if unknown unit
	}
}
