package reachcube

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goarm/environment"
	ts "github.com/samuelfneumann/goarm/timestep"
	"github.com/samuelfneumann/goarm/utils/floatutils"
)

// Reach implements the Reach task. In this task, the arm must bring
// its gripper to the cube. The reward on each step is the negated
// Euclidean distance between the gripper and the cube, so rewards are
// never positive, and the episode ends successfully once that distance
// falls below a threshold.
//
// Start states place the arm in its neutral zero pose and the cube at
// a position sampled from the task's starter, resting on the table
// with identity orientation and zero velocity.
//
// Episodes are ended when a timestep limit is reached or:
//
//  1. An illegal value exists in the state observation, such as NaN
//     or ±Inf
//  2. The cube position leaves the legal region of the scene
//  3. The gripper-to-cube distance falls below the threshold
//
// The first three endings are terminal; reaching the timestep limit
// cuts the episode off with a timeout ending instead.
//
// The Reach Task must be registered with an environment before it can
// be used.
type Reach struct {
	env        *base
	registered bool

	// cubeStarter samples the (x, y) starting position of the cube
	cubeStarter environment.Starter

	// threshold is the gripper-to-cube distance below which the task
	// is solved
	threshold float64

	// restHeight is the height at which the cube rests on the table
	restHeight float64

	illegalEnder environment.Ender
	boundsEnder  environment.Ender
	stepLimit    environment.Ender
}

// NewReach returns a new Reach task. The cubeStarter argument samples
// the (x, y) position that the cube starts each episode at. Episodes
// end successfully when the gripper comes within threshold of the
// cube, and are cut off after cutoff timesteps.
func NewReach(cubeStarter environment.Starter, threshold float64,
	cutoff int) (environment.Task, error) {
	if cubeStarter == nil {
		return nil, fmt.Errorf("newReach: no cube starter given")
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("newReach: threshold should be positive")
	}
	if cutoff <= 0 {
		return nil, fmt.Errorf("newReach: cutoff should be positive")
	}

	illegal := func(obs *mat.VecDense) bool {
		for i := 0; i < obs.Len(); i++ {
			if !floatutils.Legal(obs.AtVec(i)) {
				return true
			}
		}
		return false
	}

	return &Reach{
		registered:   false,
		cubeStarter:  cubeStarter,
		threshold:    threshold,
		illegalEnder: environment.NewFunctionEnder(illegal, ts.TerminalStateReached),
		stepLimit:    environment.NewStepLimit(cutoff),
	}, nil
}

// Start returns a starting state for a new episode. The start state is
// a vector of [p⃗^T, v⃗^T], where p⃗ is the position vector of joints and
// v⃗ is the velocity vector. The arm joints start at zero, the cube
// starts at a sampled (x, y) position resting on the table with
// identity orientation, and all velocities start at zero.
func (r *Reach) Start() *mat.VecDense {
	if !r.registered {
		panic("start: no registered environment to start")
	}

	xy := r.cubeStarter.Start()
	if xy.Len() != 2 {
		panic(fmt.Sprintf("start: cube starter should sample (x, y) "+
			"positions, got %v dimensions", xy.Len()))
	}

	backing := make([]float64, r.env.Nq+r.env.Nv)
	cube := backing[r.env.cubeQPosAddr:]
	cube[0] = xy.AtVec(0)
	cube[1] = xy.AtVec(1)
	cube[2] = r.restHeight
	cube[3] = 1.0 // identity orientation quaternion

	// Arm joints and all velocities stay at zero
	return mat.NewVecDense(len(backing), backing)
}

// End checks if a timestep should be the last in the episode and
// adjusts the timestep accordingly. End returns whether the argument
// timestep is the last in the episode.
func (r *Reach) End(t *ts.TimeStep) bool {
	if !r.registered {
		panic("end: no registered environment to end")
	}

	// Episodes end terminally on diverged simulator states
	if r.illegalEnder.End(t) {
		return true
	}
	if r.boundsEnder.End(t) {
		return true
	}

	// Goal check
	if r.DistanceToGoal() < r.threshold {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	// Check if timelimit reached
	return r.stepLimit.End(t)
}

// GetReward returns the reward for a state, action, next state
// transition. The state and nextState arguments are the (x, y, z)
// positions of the gripper before and after the transition; the reward
// is the negated distance between the gripper and the cube after the
// transition, so it is never positive.
func (r *Reach) GetReward(state, action, nextState mat.Vector) float64 {
	if !r.registered {
		panic("getReward: no registered environment to get reward of")
	}
	if nextState.Len() != 3 {
		panic(fmt.Sprintf("getReward: nextState should provide the "+
			"(x, y, z) coordinates of the gripper, got %v dimensions",
			nextState.Len()))
	}

	distVec := mat.NewVecDense(nextState.Len(), nil)
	distVec.SubVec(r.env.CubePos(), nextState)

	return -mat.Norm(distVec, 2.0)
}

// AtGoal returns whether the (x, y, z) position determined by the
// argument state is within the solve threshold of the cube. A position
// exactly at the threshold distance is not at the goal.
func (r *Reach) AtGoal(state mat.Matrix) bool {
	if !r.registered {
		panic("atGoal: no registered environment")
	}
	rows, c := state.Dims()
	if c != 1 || rows != 3 {
		panic("atGoal: argument state should be (x, y, z) coordinates")
	}

	pos := mat.NewVecDense(3, []float64{
		state.At(0, 0),
		state.At(1, 0),
		state.At(2, 0),
	})
	pos.SubVec(r.env.CubePos(), pos)

	return mat.Norm(pos, 2.0) < r.threshold
}

// DistanceToGoal returns the current distance between the gripper and
// the cube
func (r *Reach) DistanceToGoal() float64 {
	if !r.registered {
		panic("distanceToGoal: no registered environment")
	}

	gripperPos, err := r.env.GripperPos()
	if err != nil {
		panic(fmt.Sprintf("distanceToGoal: could not get gripper "+
			"position: %v", err))
	}

	distVec := mat.NewVecDense(3, nil)
	distVec.SubVec(r.env.CubePos(), gripperPos)

	return mat.Norm(distVec, 2.0)
}

// RewardSpec returns the reward specification for the environment
func (r *Reach) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{r.Min()})
	high := mat.NewVecDense(1, []float64{r.Max()})

	return environment.NewSpec(shape, environment.Reward, low, high,
		environment.Continuous)
}

// Max returns the maximum possible reward
func (r *Reach) Max() float64 {
	return 0.0
}

// Min returns the minimum possible reward
func (r *Reach) Min() float64 {
	return math.Inf(-1.0)
}

// register registers an environment with the Reach task. This is
// required because the task reads body positions out of the MuJoCo
// environment to compute rewards and endings.
func (r *Reach) register(env *base) error {
	r.env = env

	// The cube rests at its height in the scene description
	restAddr := env.cubeQPosAddr + 2
	if restAddr >= env.InitQPos.Len() {
		return fmt.Errorf("register: cube free joint data lies outside " +
			"the model's position data")
	}
	r.restHeight = env.InitQPos.AtVec(restAddr)

	// A cube outside its observation bounds has diverged
	cubeObsStart := env.cubeQPosAddr + env.cubeQVelAddr
	bounds := make([]r1.Interval, 3)
	indices := make([]int, 3)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -CubeBound, Max: CubeBound}
		indices[i] = cubeObsStart + i
	}
	r.boundsEnder = environment.NewIntervalLimit(bounds, indices,
		ts.TerminalStateReached)

	r.registered = true
	return nil
}
