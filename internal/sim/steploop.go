package sim

// StepLoop is a counted, periodic dispatch primitive: it executes a bound
// action once per DoStep call and tracks how many steps have run. It never
// sleeps; real-time pacing, if any, belongs to the caller driving the loop.
type StepLoop struct {
	period      float64
	currentStep int
	action      func()
}

// NewStepLoop binds an action to a new loop with the counter at zero.
func NewStepLoop(action func()) *StepLoop {
	return &StepLoop{action: action}
}

// SetFrequency derives the step period from a frequency in Hz.
func (l *StepLoop) SetFrequency(hz float64) {
	if hz > 0 {
		l.period = 1.0 / hz
	}
}

// Period returns the step period in seconds.
func (l *StepLoop) Period() float64 { return l.period }

// CurrentStep returns the number of steps executed since the counter was
// last reset.
func (l *StepLoop) CurrentStep() int { return l.currentStep }

// SetCurrentStep resets the step counter.
func (l *StepLoop) SetCurrentStep(n int) { l.currentStep = n }

// DoStep executes the bound action exactly once and increments the counter.
func (l *StepLoop) DoStep() {
	l.action()
	l.currentStep++
}
