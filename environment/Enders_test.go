package environment_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goarm/environment"
	ts "github.com/samuelfneumann/goarm/timestep"
)

func TestStepLimitEndsWithTimeout(t *testing.T) {
	ender := environment.NewStepLimit(3)
	obs := mat.NewVecDense(1, nil)

	step := ts.New(ts.Mid, -1.0, 1.0, obs, 2)
	if ender.End(&step) {
		t.Error("end: episode should not end before the step limit")
	}
	if step.Last() {
		t.Error("end: step type should be unchanged before the step limit")
	}

	step = ts.New(ts.Mid, -1.0, 1.0, obs, 3)
	if !ender.End(&step) {
		t.Error("end: episode should end at the step limit")
	}
	if !step.Last() {
		t.Error("end: step type should be Last at the step limit")
	}
	if step.EndType() != ts.Timeout {
		t.Errorf("end: got end type %v, want Timeout", step.EndType())
	}
}

func TestIntervalLimitEnds(t *testing.T) {
	ender := environment.NewIntervalLimit(
		[]r1.Interval{{Min: -10.0, Max: 10.0}},
		[]int{1},
		ts.TerminalStateReached,
	)

	inBounds := ts.New(ts.Mid, -1.0, 1.0,
		mat.NewVecDense(3, []float64{0.0, 9.9, 0.0}), 1)
	if ender.End(&inBounds) {
		t.Error("end: episode should not end while the feature is in bounds")
	}

	outOfBounds := ts.New(ts.Mid, -1.0, 1.0,
		mat.NewVecDense(3, []float64{0.0, 10.1, 0.0}), 2)
	if !ender.End(&outOfBounds) {
		t.Error("end: episode should end when the feature leaves its interval")
	}
	if outOfBounds.EndType() != ts.TerminalStateReached {
		t.Errorf("end: got end type %v, want TerminalStateReached",
			outOfBounds.EndType())
	}

	// Features at other indices are ignored
	otherIndex := ts.New(ts.Mid, -1.0, 1.0,
		mat.NewVecDense(3, []float64{100.0, 0.0, 0.0}), 3)
	if ender.End(&otherIndex) {
		t.Error("end: features at unwatched indices should not end episodes")
	}
}

func TestFunctionEnderEnds(t *testing.T) {
	illegal := func(obs *mat.VecDense) bool {
		for i := 0; i < obs.Len(); i++ {
			if math.IsNaN(obs.AtVec(i)) || math.IsInf(obs.AtVec(i), 0) {
				return true
			}
		}
		return false
	}
	ender := environment.NewFunctionEnder(illegal, ts.TerminalStateReached)

	legal := ts.New(ts.Mid, -1.0, 1.0, mat.NewVecDense(2, nil), 1)
	if ender.End(&legal) {
		t.Error("end: episode should not end on a legal observation")
	}

	diverged := ts.New(ts.Mid, -1.0, 1.0,
		mat.NewVecDense(2, []float64{math.NaN(), 0.0}), 2)
	if !ender.End(&diverged) {
		t.Error("end: episode should end on an illegal observation")
	}
	if diverged.EndType() != ts.TerminalStateReached {
		t.Errorf("end: got end type %v, want TerminalStateReached",
			diverged.EndType())
	}
}
