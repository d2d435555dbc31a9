package timestep

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStepTypes(t *testing.T) {
	obs := mat.NewVecDense(3, nil)

	first := New(First, 0, 1.0, obs, 0)
	if !first.First() || first.Mid() || first.Last() {
		t.Errorf("first: step type %v should be First", first.StepType)
	}

	mid := New(Mid, -1.0, 1.0, obs, 1)
	if mid.First() || !mid.Mid() || mid.Last() {
		t.Errorf("mid: step type %v should be Mid", mid.StepType)
	}

	last := New(Last, -1.0, 1.0, obs, 2)
	if last.First() || last.Mid() || !last.Last() {
		t.Errorf("last: step type %v should be Last", last.StepType)
	}
}

func TestEndType(t *testing.T) {
	obs := mat.NewVecDense(3, nil)

	step := New(Mid, -1.0, 1.0, obs, 1)
	if step.EndType() != Nil {
		t.Errorf("new: end type should be Nil before SetEnd, got %v",
			step.EndType())
	}

	step.StepType = Last
	step.SetEnd(TerminalStateReached)
	if step.EndType() != TerminalStateReached {
		t.Errorf("setEnd: got end type %v, want TerminalStateReached",
			step.EndType())
	}

	cutoff := New(Mid, -1.0, 1.0, obs, 500)
	cutoff.StepType = Last
	cutoff.SetEnd(Timeout)
	if cutoff.EndType() != Timeout {
		t.Errorf("setEnd: got end type %v, want Timeout", cutoff.EndType())
	}
}
