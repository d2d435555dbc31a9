// Package environment outlines the interfaces and structs needed to implement
// concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/goarm/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments. The returned vector is the
// underlying environment state, which need not equal the state
// observation given to an agent.
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when and how episodes end. An Ender inspects a
// timestep and, if the episode should end at that timestep, modifies
// the timestep's StepType to timestep.Last and sets its EndType.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme, the starting state distribution,
// and the episode ending scheme for some environment. A single
// environment may have many tasks. For example, a robot arm may be
// tasked with reaching toward an object or with pushing the object,
// both in the same simulated scene.
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for a (state, action, nextState)
	// transition
	GetReward(state, action, nextState mat.Vector) float64

	// AtGoal returns whether the argument state is a goal state
	AtGoal(state mat.Matrix) bool

	// Min and Max return the minimum and maximum attainable rewards
	Min() float64
	Max() float64

	RewardSpec() Spec
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	Task

	// Reset resets the environment to begin a new episode, returning
	// the first timestep of the new episode
	Reset() (ts.TimeStep, error)

	// Step takes one environmental step given some action, returning
	// the next timestep and whether it is the last in the episode
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	// CurrentTimeStep returns the last timestep of the environment
	CurrentTimeStep() ts.TimeStep

	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}

// A Closer is an Environment which must be closed after use to free
// resources, such as those held by an external physics simulator
type Closer interface {
	Environment
	Close() error
}
