package reachcube_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goarm/environment"
	"github.com/samuelfneumann/goarm/environment/mujoco/reachcube"
	ts "github.com/samuelfneumann/goarm/timestep"
)

// newReachTask returns a Reach task with cube positions sampled from
// the default range
func newReachTask(t *testing.T, seed uint64, threshold float64,
	cutoff int) environment.Task {
	t.Helper()

	bound := r1.Interval{
		Min: -reachcube.DefaultObjXYRange,
		Max: reachcube.DefaultObjXYRange,
	}
	starter := environment.NewUniformStarter([]r1.Interval{bound, bound}, seed)

	task, err := reachcube.NewReach(starter, threshold, cutoff)
	if err != nil {
		t.Fatalf("newReach: %v", err)
	}
	return task
}

func newJointEnv(t *testing.T, seed uint64) environment.Environment {
	t.Helper()

	task := newReachTask(t, seed, reachcube.DefaultThreshold, 500)
	env, first, err := reachcube.NewJoint(task, 4, seed, 0.99)
	if err != nil {
		t.Fatalf("newJoint: %v", err)
	}
	if !first.First() {
		t.Fatalf("newJoint: started with step type %v, want First",
			first.StepType)
	}
	return env
}

func TestResetWithinObservationSpec(t *testing.T) {
	env := newJointEnv(t, 193)
	defer env.(environment.Closer).Close()

	spec := env.ObservationSpec()
	for i := 0; i < 10; i++ {
		step, err := env.Reset()
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		if step.Observation.Len() != spec.Shape.Len() {
			t.Errorf("reset: got %v observation dimensions, want %v",
				step.Observation.Len(), spec.Shape.Len())
		}
		if !spec.Contains(step.Observation) {
			t.Errorf("reset: observation %v outside observation spec bounds",
				step.Observation)
		}
	}
}

func TestResetPlacesCubeWithinRange(t *testing.T) {
	env := newJointEnv(t, 817)
	defer env.(environment.Closer).Close()

	// The cube's (x, y, z) position directly follows the six arm joint
	// positions and six arm joint velocities
	const cubeStart = 12

	for i := 0; i < 25; i++ {
		step, err := env.Reset()
		if err != nil {
			t.Fatalf("reset: %v", err)
		}

		obs := step.Observation
		x := obs.AtVec(cubeStart)
		y := obs.AtVec(cubeStart + 1)
		z := obs.AtVec(cubeStart + 2)

		if math.Abs(x) > reachcube.DefaultObjXYRange ||
			math.Abs(y) > reachcube.DefaultObjXYRange {
			t.Errorf("reset: cube placed at (%v, %v), outside ±%v", x, y,
				reachcube.DefaultObjXYRange)
		}
		if math.Abs(z-0.01) > 1e-12 {
			t.Errorf("reset: cube should rest on the table at height 0.01, "+
				"got %v", z)
		}
	}
}

func TestStepRewardIsNegatedDistance(t *testing.T) {
	seed := uint64(42)
	task := newReachTask(t, seed, reachcube.DefaultThreshold, 500)
	env, _, err := reachcube.NewJoint(task, 4, seed, 0.99)
	if err != nil {
		t.Fatalf("newJoint: %v", err)
	}
	defer env.(environment.Closer).Close()

	reach := task.(*reachcube.Reach)
	action := mat.NewVecDense(reachcube.JointActionDims,
		[]float64{0.3, -0.2, 0.4, 0.1, -0.5})

	for i := 0; i < 20; i++ {
		step, done, err := env.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}

		if step.Reward > 0 {
			t.Errorf("step: got positive reward %v", step.Reward)
		}
		if dist := reach.DistanceToGoal(); math.Abs(step.Reward+dist) > 1e-10 {
			t.Errorf("step: got reward %v, want %v", step.Reward, -dist)
		}

		if done {
			if _, err := env.Reset(); err != nil {
				t.Fatalf("reset: %v", err)
			}
		}
	}
}

func TestJointActionsClipped(t *testing.T) {
	env := newJointEnv(t, 6)
	defer env.(environment.Closer).Close()

	big := mat.NewVecDense(reachcube.JointActionDims,
		[]float64{2.0, -3.0, 2.5, -2.0, 4.0})
	if _, _, err := env.Step(big); err != nil {
		t.Fatalf("step: %v", err)
	}

	want := []float64{1.0, -1.0, 1.0, -1.0, 1.0}
	ctrl := env.(*reachcube.Joint).Ctrl()
	for i, w := range want {
		if ctrl[i] != w {
			t.Errorf("step: actuator %v target %v, want clipped value %v",
				i, ctrl[i], w)
		}
	}

	// The gripper jaw actuator is never commanded
	if jaw := ctrl[reachcube.JointActionDims]; jaw != 0.0 {
		t.Errorf("step: jaw actuator target %v, want held value 0", jaw)
	}
}

func TestJointActionDimensions(t *testing.T) {
	env := newJointEnv(t, 11)
	defer env.(environment.Closer).Close()

	spec := env.ActionSpec()
	if spec.Shape.Len() != reachcube.JointActionDims {
		t.Errorf("actionSpec: got %v action dimensions, want %v",
			spec.Shape.Len(), reachcube.JointActionDims)
	}

	wrong := mat.NewVecDense(3, nil)
	if _, _, err := env.Step(wrong); err == nil {
		t.Error("step: expected error for 3-dimensional joint action")
	}
}

func TestAtGoalThresholdIsStrict(t *testing.T) {
	seed := uint64(99)

	// A threshold and cube position that are exactly representable,
	// so the boundary case can be constructed without rounding
	task := newReachTask(t, seed, 0.25, 500)
	env, _, err := reachcube.NewJoint(task, 4, seed, 0.99)
	if err != nil {
		t.Fatalf("newJoint: %v", err)
	}
	defer env.(environment.Closer).Close()

	joint := env.(*reachcube.Joint)
	qpos := make([]float64, joint.Nq)
	qvel := make([]float64, joint.Nv)
	qpos[6], qpos[7], qpos[8] = 0.5, 0.0, 0.25 // cube position
	qpos[9] = 1.0                              // identity quaternion
	if err := joint.SetState(qpos, qvel); err != nil {
		t.Fatalf("setState: %v", err)
	}

	reach := task.(*reachcube.Reach)

	atBoundary := mat.NewVecDense(3, []float64{0.75, 0.0, 0.25})
	if reach.AtGoal(atBoundary) {
		t.Error("atGoal: a position exactly at the threshold distance " +
			"should not be at the goal")
	}

	inside := mat.NewVecDense(3, []float64{0.625, 0.0, 0.25})
	if !reach.AtGoal(inside) {
		t.Error("atGoal: a position within the threshold distance should " +
			"be at the goal")
	}

	outside := mat.NewVecDense(3, []float64{1.0, 0.0, 0.25})
	if reach.AtGoal(outside) {
		t.Error("atGoal: a position beyond the threshold distance should " +
			"not be at the goal")
	}
}

func TestStepLimitEndsWithTimeout(t *testing.T) {
	seed := uint64(3)
	cutoff := 3
	task := newReachTask(t, seed, reachcube.DefaultThreshold, cutoff)
	env, _, err := reachcube.NewJoint(task, 4, seed, 0.99)
	if err != nil {
		t.Fatalf("newJoint: %v", err)
	}
	defer env.(environment.Closer).Close()

	still := mat.NewVecDense(reachcube.JointActionDims, nil)
	var step ts.TimeStep
	var done bool
	for i := 0; i < cutoff; i++ {
		step, done, err = env.Step(still)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if i < cutoff-1 && done {
			t.Fatalf("step: episode ended early at step %v", step.Number)
		}
	}

	if !done {
		t.Fatal("step: episode should end at the step limit")
	}
	if !step.Last() {
		t.Errorf("step: got step type %v at the step limit, want Last",
			step.StepType)
	}
	if step.EndType() != ts.Timeout {
		t.Errorf("step: got end type %v at the step limit, want Timeout",
			step.EndType())
	}
}

func TestSameSeedSamePlacements(t *testing.T) {
	first := newJointEnv(t, 1234)
	defer first.(environment.Closer).Close()
	second := newJointEnv(t, 1234)
	defer second.(environment.Closer).Close()

	action := mat.NewVecDense(reachcube.JointActionDims,
		[]float64{0.1, 0.2, -0.3, 0.0, 0.4})

	for i := 0; i < 3; i++ {
		a, err := first.Reset()
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		b, err := second.Reset()
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		if diff := cmp.Diff(a.Observation.RawVector().Data,
			b.Observation.RawVector().Data); diff != "" {
			t.Errorf("reset: observation mismatch under equal seeds "+
				"(-first +second):\n%s", diff)
		}

		a, _, err = first.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		b, _, err = second.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if diff := cmp.Diff(a.Observation.RawVector().Data,
			b.Observation.RawVector().Data); diff != "" {
			t.Errorf("step: observation mismatch under equal seeds "+
				"(-first +second):\n%s", diff)
		}
	}
}

func TestEndEffectorStep(t *testing.T) {
	seed := uint64(7)
	task := newReachTask(t, seed, reachcube.DefaultThreshold, 500)
	env, first, err := reachcube.NewEndEffector(task, 4, seed, 0.99)
	if err != nil {
		t.Fatalf("newEndEffector: %v", err)
	}
	defer env.(environment.Closer).Close()

	if !first.First() {
		t.Fatalf("newEndEffector: started with step type %v, want First",
			first.StepType)
	}

	spec := env.ActionSpec()
	if spec.Shape.Len() != reachcube.EEActionDims {
		t.Errorf("actionSpec: got %v action dimensions, want %v",
			spec.Shape.Len(), reachcube.EEActionDims)
	}

	obsSpec := env.ObservationSpec()
	target := mat.NewVecDense(reachcube.EEActionDims,
		[]float64{0.1, 0.1, 0.1})
	for i := 0; i < 10; i++ {
		step, done, err := env.Step(target)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if step.Reward > 0 {
			t.Errorf("step: got positive reward %v", step.Reward)
		}
		if !obsSpec.Contains(step.Observation) {
			t.Errorf("step: observation %v outside observation spec bounds",
				step.Observation)
		}
		if done {
			break
		}
	}

	wrong := mat.NewVecDense(reachcube.JointActionDims, nil)
	if _, _, err := env.Step(wrong); err == nil {
		t.Error("step: expected error for 5-dimensional end-effector action")
	}
}

func TestEndEffectorActionsClipped(t *testing.T) {
	seed := uint64(55)

	newEE := func() environment.Environment {
		task := newReachTask(t, seed, reachcube.DefaultThreshold, 500)
		env, _, err := reachcube.NewEndEffector(task, 4, seed, 0.99)
		if err != nil {
			t.Fatalf("newEndEffector: %v", err)
		}
		return env
	}
	first := newEE()
	defer first.(environment.Closer).Close()
	second := newEE()
	defer second.(environment.Closer).Close()

	// Targets beyond the action bounds behave exactly as the clipped
	// targets do
	huge := mat.NewVecDense(reachcube.EEActionDims, []float64{5.0, -7.0, 9.0})
	edge := mat.NewVecDense(reachcube.EEActionDims, []float64{1.0, -1.0, 1.0})

	a, _, err := first.Step(huge)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	b, _, err := second.Step(edge)
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	if diff := cmp.Diff(a.Observation.RawVector().Data,
		b.Observation.RawVector().Data); diff != "" {
		t.Errorf("step: out-of-bounds action should match its clipped "+
			"equivalent (-huge +edge):\n%s", diff)
	}
}

func TestFrameDimensions(t *testing.T) {
	env := newJointEnv(t, 21)
	defer env.(environment.Closer).Close()

	for _, view := range []reachcube.View{
		reachcube.FrontView,
		reachcube.TopView,
	} {
		img, err := env.(*reachcube.Joint).Frame(view)
		if err != nil {
			t.Fatalf("frame: %v", err)
		}

		bounds := img.Bounds()
		if bounds.Dx() != reachcube.FrameWidth ||
			bounds.Dy() != reachcube.FrameHeight {
			t.Errorf("frame: got %vx%v frame, want %vx%v", bounds.Dx(),
				bounds.Dy(), reachcube.FrameWidth, reachcube.FrameHeight)
		}
	}
}

func TestNewJointValidatesArguments(t *testing.T) {
	task := newReachTask(t, 1, reachcube.DefaultThreshold, 500)
	if _, _, err := reachcube.NewJoint(task, -1, 1, 0.99); err == nil {
		t.Error("newJoint: expected error for negative frame skip")
	}

	if _, err := reachcube.NewReach(nil, reachcube.DefaultThreshold,
		500); err == nil {
		t.Error("newReach: expected error for nil starter")
	}

	starter := environment.NewUniformStarter([]r1.Interval{
		{Min: -0.15, Max: 0.15},
		{Min: -0.15, Max: 0.15},
	}, 1)
	if _, err := reachcube.NewReach(starter, -0.01, 500); err == nil {
		t.Error("newReach: expected error for negative threshold")
	}
	if _, err := reachcube.NewReach(starter, reachcube.DefaultThreshold,
		0); err == nil {
		t.Error("newReach: expected error for zero cutoff")
	}
}
