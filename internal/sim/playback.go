package sim

import (
	"fmt"

	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/scan"
	"github.com/bhjolly/helios/internal/survey"
	"github.com/bhjolly/helios/internal/units"
)

// SurveyPlayback sequences a scanner through the legs of a survey. It hangs
// off the engine's leg-complete hook: every time a leg finishes, playback
// either points the scanner at the next leg or stops the simulation when
// the final waypoint has been reached.
type SurveyPlayback struct {
	sim     *Simulation
	survey  *survey.Survey
	scanner *scan.SimScanner
}

// NewSurveyPlayback wires playback into the simulation's leg-complete hook.
func NewSurveyPlayback(sim *Simulation, sv *survey.Survey, scanner *scan.SimScanner) *SurveyPlayback {
	p := &SurveyPlayback{sim: sim, survey: sv, scanner: scanner}
	sim.SetOnLegComplete(p.onLegComplete)
	return p
}

// Start positions the scanner on the first leg and runs the simulation to
// completion. The survey needs at least two legs: the last leg is a
// destination waypoint, not a traversed segment.
func (p *SurveyPlayback) Start() error {
	if len(p.survey.Legs) < 2 {
		return fmt.Errorf("survey %q has %d legs, need at least 2", p.survey.Name, len(p.survey.Legs))
	}
	p.survey.CalculateLength()
	monitoring.Logf("Playback: survey %q, %d legs, %.1f m total",
		p.survey.Name, len(p.survey.Legs), p.survey.Length())
	if p.survey.SimSpeedFactor != 0 {
		p.sim.SetSimSpeedFactor(p.survey.SimSpeedFactor)
	}
	p.startLeg(0)
	return p.sim.Start()
}

func (p *SurveyPlayback) startLeg(i int) {
	leg := p.survey.Legs[i]
	origin := leg.Platform.Position
	destination := p.survey.Legs[i+1].Platform.Position
	p.sim.SetCurrentLegIndex(i)
	p.scanner.StartLeg(leg, origin, destination)
	monitoring.Logf("Playback: leg %d, %.1f m at %.1f m/s, sweep %.1f%s",
		i, origin.DistanceTo(destination), leg.Platform.SpeedMps,
		units.ConvertAngle(leg.Scanner.SweepRad, units.Degrees), units.Degrees)
}

func (p *SurveyPlayback) onLegComplete() {
	next := p.sim.CurrentLegIndex() + 1
	if next >= len(p.survey.Legs)-1 {
		monitoring.Logf("Playback: survey %q complete", p.survey.Name)
		p.sim.Stop()
		return
	}
	p.startLeg(next)
}
