package reachcube

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/goarm/environment"
	ts "github.com/samuelfneumann/goarm/timestep"
)

// Joint implements the joint-angle action mode of the environment.
// Actions are 5-dimensional, continuous vectors of target angles for
// the five arm joints, clipped element-wise to [MinAction, MaxAction]
// before being written to the arm's position actuators. The gripper
// jaw actuator is never commanded and holds its previous target.
//
// Joint implements the environment.Environment interface.
type Joint struct {
	*base
}

// NewJoint returns a new joint-mode environment with the argument task
func NewJoint(t env.Task, frameSkip int, seed uint64,
	discount float64) (env.Environment, ts.TimeStep, error) {
	baseEnv, firstStep, err := newBase(t, frameSkip, seed, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newJoint: %v", err)
	}

	return &Joint{baseEnv}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (j *Joint) ActionSpec() env.Spec {
	shape := mat.NewVecDense(JointActionDims, nil)

	low := make([]float64, JointActionDims)
	high := make([]float64, JointActionDims)
	for i := range low {
		low[i], high[i] = MinAction, MaxAction
	}
	lowVec := mat.NewVecDense(JointActionDims, low)
	highVec := mat.NewVecDense(JointActionDims, high)

	return env.NewSpec(shape, env.Action, lowVec, highVec, env.Continuous)
}

// Step takes one environmental step given action a and returns the next
// timestep as a timestep.TimeStep and a bool indicating whether or not
// the episode has ended. Actions are 5-dimensional and continuous,
// consisting of target angles for the five arm joints. Actions outside
// the legal range of [-1, 1] are clipped to stay within this range.
func (j *Joint) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.Len() != JointActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: invalid action "+
			"dimensions \n\thave(%v) \n\twant(%v)", a.Len(), JointActionDims)
	}

	clipped := clipAction(a)

	control := mat.NewVecDense(j.Nu, nil)
	for i := 0; i < JointActionDims; i++ {
		control.SetVec(i, clipped.AtVec(i))
	}
	j.holdGripper(control)

	return j.step(control, a)
}
