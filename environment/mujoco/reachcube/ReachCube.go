// Package reachcube implements an environment in which a low-cost
// 5 degree-of-freedom robot arm with a jaw gripper must reach a cube
// resting on a table. The arm and cube are simulated by MuJoCo, which
// owns all physical state. This package owns only the action and
// observation space declarations, episode bookkeeping, and the reward
// arithmetic of the Reach task.
//
// State observations are 18-dimensional vectors and consist of the
// following features:
//
//	[
//		arm joint positions (6, rad)
//		arm joint velocities (6, rad/s)
//		cube position (3, m)
//		cube linear velocity (3, m/s)
//	]
//
// The six arm joints are, in order: shoulder pan, shoulder lift, elbow
// flex, wrist flex, wrist roll, and the gripper jaw. The cube moves on
// a free joint; only the Cartesian portion of its configuration is
// observed.
//
// Two action modes exist, each a separate environment constructed by
// its own constructor. Joint-mode actions are 5-dimensional vectors of
// target angles for the five arm joints. End-effector-mode actions are
// 3-dimensional vectors giving a target Cartesian position for the
// gripper, which is converted to joint targets by a damped
// least-squares step against the simulator's body Jacobian. Neither
// mode commands the gripper jaw: its actuator holds whatever target it
// had, so the jaw stays put while the arm moves. Actions in both modes
// are clipped element-wise to [-1, 1] before being sent to the
// simulator.
package reachcube

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/goarm/environment"
	"github.com/samuelfneumann/goarm/environment/mujoco/internal/mujocoenv"
	ts "github.com/samuelfneumann/goarm/timestep"
	"github.com/samuelfneumann/goarm/utils/matutils"
)

const (
	// SceneFile is the MJCF scene description that the environment
	// simulates
	SceneFile string = "scene_one_cube.xml"

	// GripperBody is the name of the model body treated as the arm's
	// end-effector
	GripperBody string = "gripper"

	// CubeBody is the name of the model body holding the cube geom
	CubeBody string = "cube"

	// CubeJoint is the name of the free joint that the cube moves on
	CubeJoint string = "red_box_joint"

	// JointActionDims is the number of action dimensions in joint mode.
	// The gripper jaw is not commanded, so this is one less than the
	// number of actuators in the scene.
	JointActionDims int = 5

	// EEActionDims is the number of action dimensions in end-effector
	// mode
	EEActionDims int = 3

	// MinAction and MaxAction bound each action dimension in both
	// action modes. Actions outside these bounds are clipped.
	MinAction float64 = -1.0
	MaxAction float64 = 1.0

	// MaxJointVelocity bounds the arm joint velocity observations
	MaxJointVelocity float64 = 10.0

	// CubeBound bounds the cube position and linear velocity
	// observations. A cube outside these bounds has left any
	// physically sensible region of the scene.
	CubeBound float64 = 10.0

	// DefaultObjXYRange is the default half-width of the square region
	// that cube (x, y) starting positions are sampled from
	DefaultObjXYRange float64 = 0.15

	// DefaultThreshold is the default gripper-to-cube distance below
	// which the Reach task is considered solved
	DefaultThreshold float64 = 0.01
)

// base implements the functionality common to both action modes of the
// environment: observation construction, episode resets, and advancing
// the simulator once a mode has translated its action into actuator
// targets. The Joint and EndEffector environments each embed a base.
//
// base does not itself satisfy the environment.Environment interface
// since action semantics differ between modes. Each mode adds its own
// Step and ActionSpec.
type base struct {
	*mujocoenv.MujocoEnv
	environment.Task

	obsLen int

	// Addresses into the simulator's qpos and qvel at which the cube
	// free joint's data begins. Arm data occupies everything before
	// these addresses.
	cubeQPosAddr int
	cubeQVelAddr int

	currentTimeStep ts.TimeStep
}

// newBase returns a base environment simulating the one-cube scene
// with the argument task
func newBase(t environment.Task, frameSkip int, seed uint64,
	discount float64) (*base, ts.TimeStep, error) {
	if frameSkip <= 0 {
		return nil, ts.TimeStep{},
			fmt.Errorf("newBase: frameSkip should be positive")
	}

	m, err := mujocoenv.NewMujocoEnv(SceneFile, frameSkip, seed, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newBase: %v", err)
	}

	cubeQPosAddr, err := m.JointQPosAddr(CubeJoint)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newBase: %v", err)
	}
	cubeQVelAddr, err := m.JointQVelAddr(CubeJoint)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newBase: %v", err)
	}

	b := &base{
		MujocoEnv:    m,
		Task:         t,
		obsLen:       cubeQPosAddr + cubeQVelAddr + 6,
		cubeQPosAddr: cubeQPosAddr,
		cubeQVelAddr: cubeQVelAddr,
	}

	// Register task if needed
	reach, ok := t.(*Reach)
	if ok {
		if err := reach.register(b); err != nil {
			return nil, ts.TimeStep{}, fmt.Errorf("newBase: %v", err)
		}
	}

	firstStep, err := b.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newBase: %v", err)
	}
	return b, firstStep, nil
}

// Reset resets the environment to begin a new episode. The starting
// state is drawn from the task's start-state distribution and set in
// the simulator with a single forward-kinematics pass; no simulation
// time passes.
func (b *base) Reset() (ts.TimeStep, error) {
	// Reset the embedded base MujocoEnv
	b.MujocoEnv.Reset()

	// Get and set the starting state for the next episode
	startVec := b.Start()
	posStart := startVec.RawVector().Data[:b.Nq]
	velStart := startVec.RawVector().Data[b.Nq:]

	err := b.SetState(posStart, velStart)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	firstStep := ts.New(ts.First, 0, b.Discount, b.getObs(), 0)
	b.currentTimeStep = firstStep

	return firstStep, nil
}

// CurrentTimeStep returns the current time step
func (b *base) CurrentTimeStep() ts.TimeStep {
	return b.currentTimeStep
}

// step advances the simulation with the argument actuator targets,
// which a mode has already translated and clipped from the argument
// action. The reward for the transition is computed from the gripper
// positions before and after the simulation advances.
func (b *base) step(control, action *mat.VecDense) (ts.TimeStep, bool, error) {
	state, err := b.GripperPos()
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get gripper "+
			"position for state calculation: %v", err)
	}

	if err := b.DoSimulation(control, b.FrameSkip); err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}

	nextState, err := b.GripperPos()
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get gripper "+
			"position for next state calculation: %v", err)
	}
	reward := b.GetReward(state, action, nextState)

	t := ts.New(ts.Mid, reward, b.Discount, b.getObs(),
		b.currentTimeStep.Number+1)
	last := b.End(&t)
	b.currentTimeStep = t

	return t, last, nil
}

// getObs returns a state observation constructed from the current
// simulator state
func (b *base) getObs() *mat.VecDense {
	pos := b.QPos()
	vel := b.QVel()

	obs := make([]float64, 0, b.obsLen)
	obs = append(obs, pos[:b.cubeQPosAddr]...)
	obs = append(obs, vel[:b.cubeQVelAddr]...)
	obs = append(obs, pos[b.cubeQPosAddr:b.cubeQPosAddr+3]...)
	obs = append(obs, vel[b.cubeQVelAddr:b.cubeQVelAddr+3]...)

	return mat.NewVecDense(b.obsLen, obs)
}

// GripperPos returns the Cartesian position of the gripper
func (b *base) GripperPos() (*mat.VecDense, error) {
	return b.BodyXPos(GripperBody)
}

// CubePos returns the Cartesian position of the cube
func (b *base) CubePos() *mat.VecDense {
	pos := b.QPos()
	return mat.NewVecDense(3, pos[b.cubeQPosAddr:b.cubeQPosAddr+3])
}

// ObservationSpec returns the observation specification of the
// environment
func (b *base) ObservationSpec() environment.Spec {
	low := make([]float64, b.obsLen)
	high := make([]float64, b.obsLen)

	i := 0
	for ; i < b.cubeQPosAddr; i++ {
		low[i], high[i] = -math.Pi, math.Pi
	}
	for ; i < b.cubeQPosAddr+b.cubeQVelAddr; i++ {
		low[i], high[i] = -MaxJointVelocity, MaxJointVelocity
	}
	for ; i < b.obsLen; i++ {
		low[i], high[i] = -CubeBound, CubeBound
	}

	shape := mat.NewVecDense(b.obsLen, nil)
	lowVec := mat.NewVecDense(b.obsLen, low)
	highVec := mat.NewVecDense(b.obsLen, high)

	return environment.NewSpec(shape, environment.Observation, lowVec,
		highVec, environment.Continuous)
}

// clipAction returns a copy of the argument action clipped element-wise
// to the action bounds shared by both action modes
func clipAction(action *mat.VecDense) *mat.VecDense {
	clipped := mat.VecDenseCopyOf(action)
	matutils.VecClip(clipped, MinAction, MaxAction)
	return clipped
}

// holdGripper writes the current actuator targets for all uncommanded
// actuators into control, so that a step leaves them unchanged. Both
// action modes command only the five arm actuators; the gripper jaw
// actuator keeps its previous target.
func (b *base) holdGripper(control *mat.VecDense) {
	current := b.Ctrl()
	for i := JointActionDims; i < b.Nu; i++ {
		control.SetVec(i, current[i])
	}
}
