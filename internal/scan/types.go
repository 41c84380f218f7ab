// Package scan defines the scanner, platform and scene contracts the
// simulation engine drives, the measurement and trajectory records pulse
// workers produce, and simulated implementations of each contract.
package scan

import "github.com/bhjolly/helios/internal/geom"

// Measurement is one simulated LiDAR return.
type Measurement struct {
	LegIndex       int       `json:"leg_index"`
	GpsTimeNs      float64   `json:"gps_time_ns"`
	Hit            geom.Vec3 `json:"hit"`
	RangeM         float64   `json:"range_m"`
	IncidenceRad   float64   `json:"incidence_rad"`
	EmittedPowerW  float64   `json:"emitted_power_w"`
	ReceivedPowerW float64   `json:"received_power_w"`
}

// TrajectorySample is one platform pose sample, recorded once per step.
type TrajectorySample struct {
	LegIndex  int       `json:"leg_index"`
	GpsTimeNs float64   `json:"gps_time_ns"`
	Position  geom.Vec3 `json:"position"`
}
