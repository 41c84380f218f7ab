// Package survey models a planned survey as an ordered list of legs. Each
// leg pairs the platform settings for one trajectory segment with the
// scanner settings for one continuous scan pattern.
package survey

import (
	"fmt"

	"github.com/bhjolly/helios/internal/geom"
)

// PlatformSettings describes how the platform traverses one leg.
type PlatformSettings struct {
	// Position is the leg's waypoint: the platform flies from the previous
	// leg's waypoint toward this one.
	Position geom.Vec3
	// SpeedMps is the platform ground speed for the leg.
	SpeedMps float64
}

// ScannerSettings describes the scan pattern for one leg.
type ScannerSettings struct {
	// Active is false for carry legs (turns, transit) where the scanner
	// does not fire.
	Active bool
	// SweepRad is the rotation sweep the scanner head performs during the
	// leg.
	SweepRad float64
}

// Leg is one segment of a planned survey.
type Leg struct {
	Platform PlatformSettings
	Scanner  ScannerSettings

	length float64
}

// SetLength records the leg's trajectory length in metres.
func (l *Leg) SetLength(length float64) { l.length = length }

// Length returns the leg's trajectory length in metres.
func (l *Leg) Length() float64 { return l.length }

// Survey is an ordered collection of legs plus run-level settings.
type Survey struct {
	Name           string
	NumRuns        int
	SimSpeedFactor float64
	Legs           []*Leg

	length float64
}

// AddLeg inserts a leg at the given index. A leg already present in the
// survey is not inserted twice.
func (s *Survey) AddLeg(insertIndex int, leg *Leg) error {
	if insertIndex < 0 || insertIndex > len(s.Legs) {
		return fmt.Errorf("leg insert index %d out of range [0, %d]", insertIndex, len(s.Legs))
	}
	for _, existing := range s.Legs {
		if existing == leg {
			return nil
		}
	}
	s.Legs = append(s.Legs, nil)
	copy(s.Legs[insertIndex+1:], s.Legs[insertIndex:])
	s.Legs[insertIndex] = leg
	return nil
}

// RemoveLeg removes the leg at the given index.
func (s *Survey) RemoveLeg(legIndex int) error {
	if legIndex < 0 || legIndex >= len(s.Legs) {
		return fmt.Errorf("leg index %d out of range [0, %d)", legIndex, len(s.Legs))
	}
	s.Legs = append(s.Legs[:legIndex], s.Legs[legIndex+1:]...)
	return nil
}

// CalculateLength recomputes each leg's length as the distance to the next
// leg's waypoint and records the total survey length.
func (s *Survey) CalculateLength() {
	s.length = 0
	for i := 0; i+1 < len(s.Legs); i++ {
		s.Legs[i].SetLength(
			s.Legs[i].Platform.Position.DistanceTo(s.Legs[i+1].Platform.Position),
		)
		s.length += s.Legs[i].Length()
	}
}

// Length returns the total survey length in metres, as computed by the last
// CalculateLength call.
func (s *Survey) Length() float64 { return s.length }
