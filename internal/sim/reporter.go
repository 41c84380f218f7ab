package sim

// Reporter receives lifecycle notifications from a running Simulation.
// PreStart fires before preparation, PreFinish after the main loop has
// drained with the loop's wall-clock duration, and PostFinish after final
// flushing with the total duration.
type Reporter interface {
	PreStart()
	PreFinish(mainLoopSeconds float64)
	PostFinish(totalSeconds float64)
}

type nopReporter struct{}

func (nopReporter) PreStart()          {}
func (nopReporter) PreFinish(float64)  {}
func (nopReporter) PostFinish(float64) {}
