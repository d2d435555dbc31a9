package reachcube

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/goarm/environment"
	ts "github.com/samuelfneumann/goarm/timestep"
	"github.com/samuelfneumann/goarm/utils/floatutils"
)

const (
	// ikStep scales the joint update solved from the body Jacobian on
	// each step. Position actuators then pull the joints toward the
	// updated targets, so a partial step per control cycle is enough.
	ikStep float64 = 0.5

	// ikDamping is the damping factor of the damped least-squares
	// solve, keeping joint updates finite near singular arm poses
	ikDamping float64 = 0.05
)

// EndEffector implements the end-effector action mode of the
// environment. Actions are 3-dimensional, continuous vectors giving a
// target Cartesian position for the gripper, clipped element-wise to
// [MinAction, MaxAction]. Each step solves one damped least-squares
// update of the five arm joint angles against the simulator's body
// Jacobian, moving the gripper toward the target position. The gripper
// jaw actuator is never commanded and holds its previous target.
//
// EndEffector implements the environment.Environment interface.
type EndEffector struct {
	*base
}

// NewEndEffector returns a new end-effector-mode environment with the
// argument task
func NewEndEffector(t env.Task, frameSkip int, seed uint64,
	discount float64) (env.Environment, ts.TimeStep, error) {
	baseEnv, firstStep, err := newBase(t, frameSkip, seed, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newEndEffector: %v", err)
	}

	return &EndEffector{baseEnv}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (e *EndEffector) ActionSpec() env.Spec {
	shape := mat.NewVecDense(EEActionDims, nil)

	low := make([]float64, EEActionDims)
	high := make([]float64, EEActionDims)
	for i := range low {
		low[i], high[i] = MinAction, MaxAction
	}
	lowVec := mat.NewVecDense(EEActionDims, low)
	highVec := mat.NewVecDense(EEActionDims, high)

	return env.NewSpec(shape, env.Action, lowVec, highVec, env.Continuous)
}

// Step takes one environmental step given action a and returns the next
// timestep as a timestep.TimeStep and a bool indicating whether or not
// the episode has ended. Actions are 3-dimensional and continuous,
// consisting of a target (x, y, z) position for the gripper. Actions
// outside the legal range of [-1, 1] are clipped to stay within this
// range.
func (e *EndEffector) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.Len() != EEActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: invalid action "+
			"dimensions \n\thave(%v) \n\twant(%v)", a.Len(), EEActionDims)
	}

	target := clipAction(a)

	gripperPos, err := e.GripperPos()
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get gripper "+
			"position for jacobian update: %v", err)
	}

	delta := mat.NewVecDense(EEActionDims, nil)
	delta.SubVec(target, gripperPos)

	jac, err := e.BodyJacobian(GripperBody)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}

	// Only the five arm degrees of freedom move the gripper toward the
	// target. The jaw and the cube's free joint come after them in the
	// simulator's velocity layout.
	armJac := jac.Slice(0, EEActionDims, 0, JointActionDims).(*mat.Dense)

	dq, err := dampedLeastSquares(armJac, delta, ikDamping)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}

	// Joint targets must stay within the actuators' control ranges
	bounds := e.MujocoEnv.ActionSpec()
	pos := e.QPos()

	control := mat.NewVecDense(e.Nu, nil)
	for i := 0; i < JointActionDims; i++ {
		angle := pos[i] + ikStep*dq.AtVec(i)
		control.SetVec(i, floatutils.Clip(angle, bounds.LowerBound.AtVec(i),
			bounds.UpperBound.AtVec(i)))
	}
	e.holdGripper(control)

	return e.step(control, a)
}

// dampedLeastSquares solves jac * dq = delta for dq in the damped
// least-squares sense, returning the joint update that moves the
// end-effector by approximately delta. The damping factor keeps the
// solution bounded when jac is near singular.
func dampedLeastSquares(jac *mat.Dense, delta *mat.VecDense,
	damping float64) (*mat.VecDense, error) {
	if damping <= 0 {
		return nil, fmt.Errorf("dampedLeastSquares: damping should be " +
			"positive")
	}

	var svd mat.SVD
	if ok := svd.Factorize(jac, mat.SVDThin); !ok {
		return nil, fmt.Errorf("dampedLeastSquares: could not factorize " +
			"jacobian")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)

	_, cols := jac.Dims()
	dq := mat.NewVecDense(cols, nil)
	for i, s := range sigma {
		// The damped reciprocal s/(s² + λ²) vanishes as s → 0, so
		// singular directions are simply dropped
		gain := s / (s*s + damping*damping)
		coef := gain * mat.Dot(u.ColView(i), delta)
		dq.AddScaledVec(dq, coef, v.ColView(i))
	}

	return dq, nil
}
