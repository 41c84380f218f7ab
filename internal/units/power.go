package units

import "math"

// WattsToDBm converts an optical power in watts to dBm. Non-positive powers
// return negative infinity, which formats as "-Inf" in log output.
func WattsToDBm(watts float64) float64 {
	if watts <= 0 {
		return math.Inf(-1)
	}
	return 10.0 * math.Log10(watts*1000.0)
}

// DBmToWatts converts an optical power in dBm to watts.
func DBmToWatts(dBm float64) float64 {
	return math.Pow(10.0, dBm/10.0) / 1000.0
}
