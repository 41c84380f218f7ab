package sim

import "testing"

func TestStepLoopCountsSteps(t *testing.T) {
	ran := 0
	loop := NewStepLoop(func() { ran++ })
	loop.SetFrequency(100)

	if got, want := loop.Period(), 0.01; got != want {
		t.Fatalf("Period() = %v, want %v", got, want)
	}
	for i := 0; i < 7; i++ {
		loop.DoStep()
	}
	if ran != 7 {
		t.Errorf("action ran %d times, want 7", ran)
	}
	if loop.CurrentStep() != 7 {
		t.Errorf("CurrentStep() = %d, want 7", loop.CurrentStep())
	}

	loop.SetCurrentStep(0)
	if loop.CurrentStep() != 0 {
		t.Errorf("CurrentStep() after reset = %d, want 0", loop.CurrentStep())
	}
}

func TestStepLoopIgnoresNonPositiveFrequency(t *testing.T) {
	loop := NewStepLoop(func() {})
	loop.SetFrequency(50)
	loop.SetFrequency(0)
	loop.SetFrequency(-1)
	if got, want := loop.Period(), 0.02; got != want {
		t.Errorf("Period() = %v, want %v", got, want)
	}
}
